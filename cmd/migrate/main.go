package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/srp-api/pkg/config"
	"github.com/noah-isme/srp-api/pkg/database"
	"github.com/noah-isme/srp-api/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		matric TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS results (
		id UUID PRIMARY KEY,
		matric TEXT NOT NULL REFERENCES students (matric) ON DELETE CASCADE,
		subject TEXT NOT NULL,
		score DOUBLE PRECISION NOT NULL CHECK (score >= 0 AND score <= 100),
		grade TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_results_matric ON results (matric)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		user_type TEXT NOT NULL,
		user_id TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at DESC)`,
}

func main() {
	seedAdmin := flag.Bool("seed-admin", false, "create an initial administrator account")
	adminUsername := flag.String("admin-username", "admin", "seed admin username")
	adminEmail := flag.String("admin-email", "", "seed admin email")
	adminPassword := flag.String("admin-password", "", "seed admin password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			sugar.Fatalw("migration statement failed", "error", err)
		}
	}
	sugar.Infow("schema up to date")

	if *seedAdmin {
		if *adminEmail == "" || *adminPassword == "" {
			sugar.Fatalw("seed admin requires -admin-email and -admin-password")
		}
		if err := createSeedAdmin(ctx, db, *adminUsername, *adminEmail, *adminPassword); err != nil {
			sugar.Fatalw("failed to seed admin", "error", err)
		}
		sugar.Infow("seed admin ensured", "username", *adminUsername)
	}
}

func createSeedAdmin(ctx context.Context, db *sqlx.DB, username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	_, err = db.ExecContext(ctx, `
		INSERT INTO admins (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), username, email, string(hash), now)
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}
