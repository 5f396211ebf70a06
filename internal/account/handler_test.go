// AngelaMos | 2026
// handler_test.go

package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l9kk/IWork-bakcend/internal/core"
)

func newTestHandler(t *testing.T) (*Handler, *Service, chi.Router) {
	t.Helper()

	repo := newFakeRepository()
	svc := NewService(repo, core.FixedClock{
		Instant: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	})
	handler := NewHandler(svc)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return handler, svc, router
}

func doJSON(
	t *testing.T,
	router chi.Router,
	method, path string,
	body any,
) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerRegister(t *testing.T) {
	_, _, router := newTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/accounts", RegisterRequest{
		Email:     "ada@example.com",
		Password:  "enchantress-of-numbers",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Success bool            `json:"success"`
		Data    AccountResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, "ada@example.com", body.Data.Email)
	assert.True(t, body.Data.IsActive)
	assert.False(t, body.Data.IsVerified)

	// duplicate registration conflicts
	rec = doJSON(t, router, http.MethodPost, "/accounts", RegisterRequest{
		Email:     "ada@example.com",
		Password:  "another-password",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerRegisterValidation(t *testing.T) {
	_, _, router := newTestHandler(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{
			name: "missing email",
			req: RegisterRequest{
				Password:  "valid-password",
				FirstName: "Ada",
				LastName:  "Lovelace",
			},
		},
		{
			name: "short password",
			req: RegisterRequest{
				Email:     "ada@example.com",
				Password:  "short",
				FirstName: "Ada",
				LastName:  "Lovelace",
			},
		},
		{
			name: "bad email",
			req: RegisterRequest{
				Email:     "not-an-email",
				Password:  "valid-password",
				FirstName: "Ada",
				LastName:  "Lovelace",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/accounts", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandlerLogin(t *testing.T) {
	_, svc, router := newTestHandler(t)
	createTestUser(t, svc, "ada@example.com", "enchantress-of-numbers")

	t.Run("success", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "enchantress-of-numbers",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown email and wrong password respond identically",
		func(t *testing.T) {
			recUnknown := doJSON(
				t, router, http.MethodPost, "/auth/login",
				LoginRequest{
					Email:    "nobody@example.com",
					Password: "enchantress-of-numbers",
				},
			)
			recWrongPass := doJSON(
				t, router, http.MethodPost, "/auth/login",
				LoginRequest{
					Email:    "ada@example.com",
					Password: "wrong-password-here",
				},
			)

			assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
			assert.Equal(t, http.StatusUnauthorized, recWrongPass.Code)
			assert.Equal(
				t,
				recUnknown.Body.String(),
				recWrongPass.Body.String(),
			)
		})

	t.Run("deactivated account", func(t *testing.T) {
		user := createTestUser(t, svc, "off@example.com", "some-password-123")
		inactive := false
		_, err := svc.Update(context.Background(), user.ID, UpdateUserParams{
			IsActive: &inactive,
		})
		require.NoError(t, err)

		rec := doJSON(t, router, http.MethodPost, "/auth/login", LoginRequest{
			Email:    "off@example.com",
			Password: "some-password-123",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandlerVerificationFlow(t *testing.T) {
	_, svc, router := newTestHandler(t)
	createTestUser(t, svc, "ada@example.com", "some-password-123")

	rec := doJSON(
		t, router, http.MethodPost, "/auth/verification",
		RequestVerificationRequest{Email: "ada@example.com"},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data TokenIssuedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)

	rec = doJSON(
		t, router, http.MethodPost, "/auth/verification/confirm",
		ConfirmVerificationRequest{
			Email: "ada@example.com",
			Token: body.Data.Token,
		},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	user, err := svc.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationToken)
}

func TestHandlerVerificationUnknownEmailAccepted(t *testing.T) {
	_, _, router := newTestHandler(t)

	// unregistered addresses are acknowledged, not errored
	rec := doJSON(
		t, router, http.MethodPost, "/auth/password-reset",
		RequestPasswordResetRequest{Email: "nobody@example.com"},
	)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandlerPasswordResetFlow(t *testing.T) {
	_, svc, router := newTestHandler(t)
	createTestUser(t, svc, "ada@example.com", "original-password")

	rec := doJSON(
		t, router, http.MethodPost, "/auth/password-reset",
		RequestPasswordResetRequest{Email: "ada@example.com"},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data TokenIssuedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)

	rec = doJSON(
		t, router, http.MethodPost, "/auth/password-reset/confirm",
		ConfirmPasswordResetRequest{
			Email:       "ada@example.com",
			Token:       body.Data.Token,
			NewPassword: "brand-new-password",
		},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	// old credential gone, new one works
	rec = doJSON(t, router, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "ada@example.com",
		Password: "original-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "ada@example.com",
		Password: "brand-new-password",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// reused token is rejected
	rec = doJSON(
		t, router, http.MethodPost, "/auth/password-reset/confirm",
		ConfirmPasswordResetRequest{
			Email:       "ada@example.com",
			Token:       body.Data.Token,
			NewPassword: "yet-another-password",
		},
	)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUpdateOwnAccount(t *testing.T) {
	_, svc, router := newTestHandler(t)
	user := createTestUser(t, svc, "ada@example.com", "original-password")
	path := fmt.Sprintf("/accounts/%s", user.ID)

	newFirst := "Augusta"

	t.Run("requires current password", func(t *testing.T) {
		rec := doJSON(
			t, router, http.MethodPatch, path,
			UpdateAccountRequest{FirstName: &newFirst},
		)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects wrong current password", func(t *testing.T) {
		rec := doJSON(
			t, router, http.MethodPatch, path,
			UpdateOwnAccountRequest{
				CurrentPassword: "not-the-password",
				FirstName:       &newFirst,
			},
		)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("applies change with correct current password", func(t *testing.T) {
		rec := doJSON(
			t, router, http.MethodPatch, path,
			UpdateOwnAccountRequest{
				CurrentPassword: "original-password",
				FirstName:       &newFirst,
			},
		)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data AccountResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Augusta", body.Data.FirstName)
		assert.Equal(t, "Lovelace", body.Data.LastName)
		assert.Equal(t, "Augusta Lovelace", body.Data.FullName)
	})

	t.Run("password change requires ownership proof", func(t *testing.T) {
		newPassword := "replacement-password"
		rec := doJSON(
			t, router, http.MethodPatch, path,
			UpdateOwnAccountRequest{
				CurrentPassword: "not-the-password",
				Password:        &newPassword,
			},
		)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		// the credential is unchanged
		rec = doJSON(t, router, http.MethodPost, "/auth/login", LoginRequest{
			Email:    "ada@example.com",
			Password: "original-password",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandlerGetAccountNotFound(t *testing.T) {
	_, _, router := newTestHandler(t)

	tests := []struct {
		name string
		id   string
	}{
		{"malformed id", "no-such-id"},
		{"unknown uuid", "2fbf4e9e-8a7c-4c7e-9f1a-3d2b8c0d4e5f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(
				http.MethodGet,
				"/accounts/"+tt.id,
				nil,
			)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

// A verified account asking for a new verification token drops back to
// unverified until it confirms the new token.
func TestHandlerReverification(t *testing.T) {
	_, svc, router := newTestHandler(t)
	user := createTestUser(t, svc, "ada@example.com", "some-password-123")

	ctx := context.Background()
	_, firstToken, err := svc.IssueVerificationToken(ctx, user.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmVerification(ctx, "ada@example.com", firstToken)
	require.NoError(t, err)

	rec := doJSON(
		t, router, http.MethodPost, "/auth/verification",
		RequestVerificationRequest{Email: "ada@example.com"},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data TokenIssuedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)

	pending, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, pending.IsVerified)

	rec = doJSON(
		t, router, http.MethodPost, "/auth/verification/confirm",
		ConfirmVerificationRequest{
			Email: "ada@example.com",
			Token: body.Data.Token,
		},
	)
	require.Equal(t, http.StatusOK, rec.Code)

	reverified, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, reverified.IsVerified)
}
