// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

type User struct {
	ID                 string     `db:"id"`
	Email              string     `db:"email"`
	HashedPassword     string     `db:"hashed_password"`
	FirstName          string     `db:"first_name"`
	LastName           string     `db:"last_name"`
	IsActive           bool       `db:"is_active"`
	IsAdmin            bool       `db:"is_admin"`
	IsVerified         bool       `db:"is_verified"`
	VerificationToken  *string    `db:"verification_token"`
	VerificationSentAt *time.Time `db:"verification_sent_at"`
	PasswordResetToken *string    `db:"password_reset_token"`
	PasswordResetAt    *time.Time `db:"password_reset_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasPendingVerification reports whether a verification token is
// outstanding. Invariant: a non-nil token implies IsVerified is false.
func (u *User) HasPendingVerification() bool {
	return u.VerificationToken != nil
}

func (u *User) HasPendingPasswordReset() bool {
	return u.PasswordResetToken != nil
}
