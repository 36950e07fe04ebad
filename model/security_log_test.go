package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestSecurityLogModel_Create(t *testing.T) {
	db := setupTestDB(t, "security_log_create", &SecurityLog{})

	entry := SecurityLog{
		EventType: "LOGIN_SUCCESS",
		UserID:    "12",
		Username:  "alice",
		IP:        "192.168.1.1",
		Message:   "User logged in successfully",
		Details:   datatypes.JSON(`{"reason":"ok"}`),
	}
	require.NoError(t, db.Create(&entry).Error)
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	var found SecurityLog
	require.NoError(t, db.First(&found, entry.ID).Error)
	assert.Equal(t, "alice", found.Username)
	assert.JSONEq(t, `{"reason":"ok"}`, string(found.Details))
}

func TestSecurityLogModel_CountByEventType(t *testing.T) {
	db := setupTestDB(t, "security_log_count", &SecurityLog{})

	for _, ev := range []string{"LOGIN_FAILURE", "LOGIN_FAILURE", "LOGOUT"} {
		require.NoError(t, db.Create(&SecurityLog{EventType: ev, IP: "10.0.0.1"}).Error)
	}

	var count int64
	require.NoError(t, db.Model(&SecurityLog{}).Where("event_type = ?", "LOGIN_FAILURE").Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
