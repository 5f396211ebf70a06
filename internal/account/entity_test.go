// AngelaMos | 2026
// entity_test.go

package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserFullName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{"both names", "Ada", "Lovelace", "Ada Lovelace"},
		{"first only", "Ada", "", "Ada"},
		{"last only", "", "Lovelace", "Lovelace"},
		{"neither", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{FirstName: tt.first, LastName: tt.last}
			assert.Equal(t, tt.want, u.FullName())
		})
	}
}

func TestUserPendingState(t *testing.T) {
	token := "opaque-token"
	now := time.Now()

	u := &User{}
	assert.False(t, u.HasPendingVerification())
	assert.False(t, u.HasPendingPasswordReset())
	assert.False(t, u.IsDeleted())

	u.VerificationToken = &token
	u.PasswordResetToken = &token
	u.DeletedAt = &now
	assert.True(t, u.HasPendingVerification())
	assert.True(t, u.HasPendingPasswordReset())
	assert.True(t, u.IsDeleted())
}
