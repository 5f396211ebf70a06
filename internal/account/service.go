// AngelaMos | 2026
// service.go

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/l9kk/IWork-bakcend/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrTokenMismatch      = errors.New("token mismatch")
)

type Service struct {
	repo  Repository
	clock core.Clock
}

func NewService(repo Repository, clock core.Clock) *Service {
	if clock == nil {
		clock = core.SystemClock()
	}
	return &Service{repo: repo, clock: clock}
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *Service) Create(
	ctx context.Context,
	params CreateUserParams,
) (*User, error) {
	hashedPassword, err := core.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:             uuid.New().String(),
		Email:          normalizeEmail(params.Email),
		HashedPassword: hashedPassword,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		IsActive:       params.IsActive,
		IsAdmin:        params.IsAdmin,
		IsVerified:     params.IsVerified,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return user, nil
}

// Update applies a partial change-set. A plaintext password in the input
// is replaced by a freshly computed hash before the repository sees it.
func (s *Service) Update(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*User, error) {
	changes := UserChanges{
		FirstName:  params.FirstName,
		LastName:   params.LastName,
		IsActive:   params.IsActive,
		IsAdmin:    params.IsAdmin,
		IsVerified: params.IsVerified,
	}

	if params.Email != nil {
		normalized := normalizeEmail(*params.Email)
		changes.Email = &normalized
	}

	if params.Password != nil && *params.Password != "" {
		hashedPassword, err := core.HashPassword(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		changes.HashedPassword = &hashedPassword
	}

	user, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return user, nil
}

// UpdateWithCredential applies a partial change-set after proving the
// caller knows the account's current password. With no session layer,
// this is the gate on self-service profile and password changes.
func (s *Service) UpdateWithCredential(
	ctx context.Context,
	id, currentPassword string,
	params UpdateUserParams,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	valid, _, err := core.VerifyPasswordTimingSafe(
		currentPassword,
		&user.HashedPassword,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	return s.Update(ctx, id, params)
}

// Authenticate verifies an email and password pair. An unknown email and
// a wrong password produce the identical result, and the unknown-email
// path still pays the hashing cost, so callers cannot tell registered
// addresses apart from unregistered ones.
func (s *Service) Authenticate(
	ctx context.Context,
	email, password string,
) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		password,
		&user.HashedPassword,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		user, _ = s.rehash(ctx, user, newHash)
	}

	return user, nil
}

func (s *Service) rehash(
	ctx context.Context,
	user *User,
	newHash string,
) (*User, error) {
	updated, err := s.repo.Update(ctx, user.ID, UserChanges{
		HashedPassword: &newHash,
	})
	if err != nil {
		return user, err
	}
	return updated, nil
}

func (s *Service) IsActive(user *User) bool {
	return user.IsActive
}

func (s *Service) IsAdmin(user *User) bool {
	return user.IsAdmin
}

// SetVerificationToken stores a caller-supplied opaque token and stamps
// the send time. The account reverts to unverified until the new token
// is confirmed. Token generation and delivery are the caller's concern.
func (s *Service) SetVerificationToken(
	ctx context.Context,
	id, token string,
) (*User, error) {
	return s.repo.SetVerificationToken(ctx, id, token, s.clock.Now().UTC())
}

// IssueVerificationToken generates a fresh token and stores it,
// returning the token for delivery.
func (s *Service) IssueVerificationToken(
	ctx context.Context,
	id string,
) (*User, string, error) {
	token, err := core.GenerateOpaqueToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate verification token: %w", err)
	}

	user, err := s.SetVerificationToken(ctx, id, token)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// VerifyEmail marks the user verified and clears the outstanding token.
// It does not check the token; matching happens before this is called.
func (s *Service) VerifyEmail(ctx context.Context, id string) (*User, error) {
	return s.repo.MarkEmailVerified(ctx, id)
}

func (s *Service) SetPasswordResetToken(
	ctx context.Context,
	id, token string,
) (*User, error) {
	return s.repo.SetPasswordResetToken(ctx, id, token, s.clock.Now().UTC())
}

func (s *Service) IssuePasswordResetToken(
	ctx context.Context,
	id string,
) (*User, string, error) {
	token, err := core.GenerateOpaqueToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate reset token: %w", err)
	}

	user, err := s.SetPasswordResetToken(ctx, id, token)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// ResetPassword installs a new password hash and burns the reset token.
func (s *Service) ResetPassword(
	ctx context.Context,
	id, newPassword string,
) (*User, error) {
	hashedPassword, err := core.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.ResetPassword(ctx, id, hashedPassword)
}

// ConfirmVerification is the caller-side composition: match the supplied
// token against the stored one, then flip the verified state.
func (s *Service) ConfirmVerification(
	ctx context.Context,
	email, token string,
) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if !user.HasPendingVerification() ||
		!core.CompareTokens(token, *user.VerificationToken) {
		return nil, ErrTokenMismatch
	}

	return s.repo.MarkEmailVerified(ctx, user.ID)
}

// ConfirmPasswordReset matches the reset token and applies the new
// password. The token is burned by the reset whether or not the new
// password is ever used.
func (s *Service) ConfirmPasswordReset(
	ctx context.Context,
	email, token, newPassword string,
) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if !user.HasPendingPasswordReset() ||
		!core.CompareTokens(token, *user.PasswordResetToken) {
		return nil, ErrTokenMismatch
	}

	return s.ResetPassword(ctx, user.ID, newPassword)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, normalizeEmail(email))
}

func (s *Service) ListAccounts(
	ctx context.Context,
	params ListAccountsParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

// Stored emails are folded to lower case at this boundary; the
// repository itself stays an exact-match lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
