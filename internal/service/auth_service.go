package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/srp-api/internal/models"
	"github.com/noah-isme/srp-api/internal/repository"
	appErrors "github.com/noah-isme/srp-api/pkg/errors"
)

type authAdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, admin *models.Admin) error
}

type authStudentRepository interface {
	FindByMatric(ctx context.Context, matric string) (*models.Student, error)
}

type auditRecorder interface {
	Record(ctx context.Context, userType, userID, action, details string, meta models.RequestMeta)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// AuthService authenticates principals and manages access tokens.
type AuthService struct {
	admins    authAdminRepository
	students  authStudentRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(admins authAdminRepository, students authStudentRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{admins: admins, students: students, audit: audit, validator: validate, logger: logger, config: config}
}

// RegisterAdmin creates a new administrator account.
func (s *AuthService) RegisterAdmin(ctx context.Context, req models.RegisterAdminRequest, meta models.RequestMeta) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "missing required fields")
	}

	exists, err := s.admins.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	admin := &models.Admin{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		// The unique constraint is the final arbiter for concurrent
		// registrations; the pre-check only shapes the common case.
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username or email already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	s.audit.Record(ctx, models.AuditUserSystem, models.AuditUserSystem, models.AuditActionAdminRegistered, admin.Username, meta)

	return admin, nil
}

// Login authenticates an admin or student and returns an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "missing required fields")
	}

	meta := models.RequestMeta{IP: req.IP, UserAgent: req.UserAgent}

	switch req.Role {
	case models.RoleAdmin:
		admin, err := s.admins.FindByUsername(ctx, req.Identifier)
		if err == nil && bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) == nil {
			token, expiresIn, err := s.generateAccessToken(models.RoleAdmin, admin.Username, admin.Username)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
			}
			s.audit.Record(ctx, models.AuditUserAdmin, admin.Username, models.AuditActionLoginSuccess, "", meta)
			return &models.LoginResponse{
				AccessToken: token,
				ExpiresIn:   expiresIn,
				Role:        models.RoleAdmin,
				Name:        admin.Username,
				Email:       admin.Email,
			}, nil
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch admin")
		}

	case models.RoleStudent:
		student, err := s.students.FindByMatric(ctx, req.Identifier)
		if err == nil && bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)) == nil {
			token, expiresIn, err := s.generateAccessToken(models.RoleStudent, student.Matric, student.Name)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
			}
			s.audit.Record(ctx, models.AuditUserStudent, student.Matric, models.AuditActionLoginSuccess, "", meta)
			return &models.LoginResponse{
				AccessToken: token,
				ExpiresIn:   expiresIn,
				Role:        models.RoleStudent,
				Name:        student.Name,
				Matric:      student.Matric,
			}, nil
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
		}
	}

	// Unknown identifier, wrong password or unrecognised role all land
	// here: one indistinguishable authentication failure.
	s.audit.Record(ctx, models.AuditUserUnknown, req.Identifier, models.AuditActionLoginFailed, fmt.Sprintf("as %s", req.Role), meta)
	return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid credentials")
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(role models.Role, identifier, name string) (string, int64, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.Expiry)
	claims := &models.JWTClaims{
		Role:       role,
		Identifier: identifier,
		Name:       name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   identifier,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.config.Expiry.Seconds()), nil
}
