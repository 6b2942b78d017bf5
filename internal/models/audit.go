package models

import "time"

// User types recorded on audit entries.
const (
	AuditUserAdmin   = "admin"
	AuditUserStudent = "student"
	AuditUserSystem  = "system"
	AuditUserUnknown = "unknown"
)

// Audit action constants for security-relevant events.
const (
	AuditActionLoginSuccess      = "Login successful"
	AuditActionLoginFailed       = "Failed login attempt"
	AuditActionAdminRegistered   = "Admin registered"
	AuditActionStudentRegistered = "Registered student"
	AuditActionStudentDeleted    = "Deleted student"
	AuditActionResultUploaded    = "Uploaded result"
	AuditActionResultUpdated     = "Updated result"
	AuditActionResultDeleted     = "Deleted result"
	AuditActionResultsViewed     = "Viewed results"
	AuditActionResultsExported   = "Exported results"
)

// AuditLog represents an immutable audit trail record.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	UserType  string    `db:"user_type" json:"user_type"`
	UserID    string    `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	Details   string    `db:"details" json:"details,omitempty"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	UserAgent string    `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AuditFilter scopes audit trail listings.
type AuditFilter struct {
	UserType string
	Action   string
	Page     int
	PageSize int
}
