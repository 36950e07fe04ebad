package util

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jagwell/jagwell/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventLogout             SecurityEventType = "LOGOUT"
	EventUserCreated        SecurityEventType = "USER_CREATED"
	EventUserDeleted        SecurityEventType = "USER_DELETED"
	EventCredentialsChanged SecurityEventType = "CREDENTIALS_CHANGED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
)

// SecurityEvent represents a security event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	UserID    string
	Username  string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

const maxLogValueLen = 200

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(value)
	if len(value) > maxLogValueLen {
		value = value[:maxLogValueLen] + "..."
	}
	return value
}

// LogSecurityEvent writes the event to the process log and, when db is not
// nil, persists it to SECURITY_LOG. Persistence is best effort.
func LogSecurityEvent(db *gorm.DB, event SecurityEvent) {
	entry := model.SecurityLog{
		EventType: string(event.EventType),
		UserID:    sanitizeLogValue(event.UserID),
		Username:  sanitizeLogValue(event.Username),
		IP:        sanitizeLogValue(event.IP),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
	}

	Log().Info().
		Str("component", "security").
		Str("event", entry.EventType).
		Str("user_id", entry.UserID).
		Str("username", entry.Username).
		Str("ip", entry.IP).
		Int("details", len(event.Details)).
		Msg(entry.Message)

	if db == nil {
		return
	}
	if len(event.Details) > 0 {
		if b, err := json.Marshal(event.Details); err == nil {
			entry.Details = datatypes.JSON(b)
		}
	}
	if err := db.Create(&entry).Error; err != nil {
		Log().Warn().Err(err).Str("event", entry.EventType).Msg("failed to persist security event")
	}
}

// LogLoginSuccess logs a successful login event
func LogLoginSuccess(db *gorm.DB, userID uint, username, ip, userAgent string) {
	LogSecurityEvent(db, SecurityEvent{
		EventType: EventLoginSuccess,
		UserID:    fmt.Sprintf("%d", userID),
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged in successfully",
	})
}

// LogLoginFailure logs a failed login attempt
func LogLoginFailure(db *gorm.DB, username, ip, userAgent, reason string) {
	LogSecurityEvent(db, SecurityEvent{
		EventType: EventLoginFailure,
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
	})
}

// LogLogout logs a logout event
func LogLogout(db *gorm.DB, userID uint, username, ip, userAgent string) {
	LogSecurityEvent(db, SecurityEvent{
		EventType: EventLogout,
		UserID:    fmt.Sprintf("%d", userID),
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "User logged out",
	})
}

// LogUserDeleted records an admin removing an account.
func LogUserDeleted(db *gorm.DB, actorID, targetID uint, ip string, reassigned int64) {
	LogSecurityEvent(db, SecurityEvent{
		EventType: EventUserDeleted,
		UserID:    fmt.Sprintf("%d", actorID),
		IP:        ip,
		Message:   fmt.Sprintf("User %d deleted", targetID),
		Details:   map[string]interface{}{"target_id": targetID, "reassigned_records": reassigned},
	})
}

// LogUnauthorizedAccess logs unauthorized access attempts
func LogUnauthorizedAccess(db *gorm.DB, userID, username, ip, resource, reason string) {
	LogSecurityEvent(db, SecurityEvent{
		EventType: EventUnauthorizedAccess,
		UserID:    userID,
		Username:  username,
		IP:        ip,
		Message:   fmt.Sprintf("Unauthorized access to %s: %s", resource, reason),
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(db *gorm.DB, ip, endpoint string) {
	LogSecurityEvent(db, SecurityEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}
