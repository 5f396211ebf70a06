// AngelaMos | 2026
// repository.go

package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/l9kk/IWork-bakcend/internal/core"
)

const userColumns = `
	id, email, hashed_password, first_name, last_name,
	is_active, is_admin, is_verified,
	verification_token, verification_sent_at,
	password_reset_token, password_reset_at,
	created_at, updated_at, deleted_at`

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id string, changes UserChanges) (*User, error)
	SetVerificationToken(
		ctx context.Context,
		id, token string,
		sentAt time.Time,
	) (*User, error)
	MarkEmailVerified(ctx context.Context, id string) (*User, error)
	SetPasswordResetToken(
		ctx context.Context,
		id, token string,
		requestedAt time.Time,
	) (*User, error)
	ResetPassword(ctx context.Context, id, hashedPassword string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, params ListAccountsParams) ([]User, int, error)
	SoftDelete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, hashed_password, first_name, last_name,
			is_active, is_admin, is_verified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.FirstName,
		user.LastName,
		user.IsActive,
		user.IsAdmin,
		user.IsVerified,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}

// Update applies a partial change-set in a single UPDATE statement.
// Fields absent from the change-set keep their prior values.
func (r *repository) Update(
	ctx context.Context,
	id string,
	changes UserChanges,
) (*User, error) {
	if changes.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var assignments []string
	var args []any
	argIdx := 1

	addAssignment := func(column string, value any) {
		argIdx++
		assignments = append(
			assignments,
			fmt.Sprintf("%s = $%d", column, argIdx),
		)
		args = append(args, value)
	}

	args = append(args, id)

	if changes.Email != nil {
		addAssignment("email", *changes.Email)
	}
	if changes.HashedPassword != nil {
		addAssignment("hashed_password", *changes.HashedPassword)
	}
	if changes.FirstName != nil {
		addAssignment("first_name", *changes.FirstName)
	}
	if changes.LastName != nil {
		addAssignment("last_name", *changes.LastName)
	}
	if changes.IsActive != nil {
		addAssignment("is_active", *changes.IsActive)
	}
	if changes.IsAdmin != nil {
		addAssignment("is_admin", *changes.IsAdmin)
	}
	if changes.IsVerified != nil {
		addAssignment("is_verified", *changes.IsVerified)
	}

	assignments = append(assignments, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`,
		strings.Join(assignments, ", "), userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	return &user, nil
}

// SetVerificationToken stores a fresh token and drops the verified flag
// in the same statement. An outstanding token always means the email is
// awaiting confirmation, matching the schema constraint.
func (r *repository) SetVerificationToken(
	ctx context.Context,
	id, token string,
	sentAt time.Time,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET verification_token = $2,
		    verification_sent_at = $3,
		    is_verified = false,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id, token, sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set verification token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set verification token: %w", err)
	}

	return &user, nil
}

// MarkEmailVerified flips the verified flag and clears the token in one
// statement, so readers never observe one without the other.
func (r *repository) MarkEmailVerified(
	ctx context.Context,
	id string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET is_verified = true,
		    verification_token = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mark email verified: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("mark email verified: %w", err)
	}

	return &user, nil
}

func (r *repository) SetPasswordResetToken(
	ctx context.Context,
	id, token string,
	requestedAt time.Time,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET password_reset_token = $2,
		    password_reset_at = $3,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id, token, requestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set password reset token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set password reset token: %w", err)
	}

	return &user, nil
}

// ResetPassword installs the new hash and burns the reset token in the
// same statement. The token is single-use regardless of outcome upstream.
func (r *repository) ResetPassword(
	ctx context.Context,
	id, hashedPassword string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET hashed_password = $2,
		    password_reset_token = NULL,
		    password_reset_at = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id, hashedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reset password: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reset password: %w", err)
	}

	return &user, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Verified != nil {
		conditions = append(
			conditions,
			fmt.Sprintf("is_verified = $%d", argIdx),
		)
		args = append(args, *params.Verified)
		argIdx++
	}

	if params.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *params.Active)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
