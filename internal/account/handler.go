// AngelaMos | 2026
// handler.go

package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/l9kk/IWork-bakcend/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/accounts", h.Register)
	r.Get("/accounts/{accountID}", h.GetAccount)
	r.Patch("/accounts/{accountID}", h.UpdateOwnAccount)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/verification", h.RequestVerification)
		r.Post("/verification/confirm", h.ConfirmVerification)
		r.Post("/password-reset", h.RequestPasswordReset)
		r.Post("/password-reset/confirm", h.ConfirmPasswordReset)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/accounts", func(r chi.Router) {
		r.Use(adminOnly)

		r.Get("/", h.ListAccounts)
		r.Get("/{accountID}", h.GetAccount)
		r.Patch("/{accountID}", h.UpdateAccount)
		r.Put("/{accountID}/status", h.UpdateAccountStatus)
		r.Delete("/{accountID}", h.DeleteAccount)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	exists, err := h.service.EmailExists(r.Context(), req.Email)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	if exists {
		core.Conflict(w, "email already registered")
		return
	}

	user, err := h.service.Create(r.Context(), CreateUserParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.Conflict(w, "email already registered")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToAccountResponse(user))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.Unauthorized(w, "invalid email or password")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	if !h.service.IsActive(user) {
		core.Forbidden(w, "account is deactivated")
		return
	}

	core.OK(w, ToAccountResponse(user))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(r)
	if !ok {
		core.NotFound(w, "account")
		return
	}

	user, err := h.service.GetByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(user))
}

// UpdateOwnAccount is the self-service profile and password change. The
// request must carry the account's current password; a mismatch is
// rejected the same way a bad login is.
func (h *Handler) UpdateOwnAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(r)
	if !ok {
		core.NotFound(w, "account")
		return
	}

	var req UpdateOwnAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateWithCredential(
		r.Context(),
		accountID,
		req.CurrentPassword,
		UpdateUserParams{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Password:  req.Password,
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "account")
		case errors.Is(err, ErrInvalidCredentials):
			core.Unauthorized(w, "current password is incorrect")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, ToAccountResponse(user))
}

// UpdateAccount is the admin-surface change-set; the route is gated by
// the admin key middleware, so no password proof is required here.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(r)
	if !ok {
		core.NotFound(w, "account")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Update(r.Context(), accountID, UpdateUserParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(user))
}

// UpdateAccountStatus toggles active/admin flags (admin only).
func (h *Handler) UpdateAccountStatus(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(r)
	if !ok {
		core.NotFound(w, "account")
		return
	}

	var req UpdateAccountStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.Update(r.Context(), accountID, UpdateUserParams{
		IsActive: req.IsActive,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(user))
}

// RequestVerification issues a fresh verification token and returns it
// for the mail-delivery layer to send. An unregistered address gets a
// bare 202 rather than an error.
func (h *Handler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	var req RequestVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			h.accepted(w)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	updated, token, err := h.service.IssueVerificationToken(
		r.Context(),
		user.ID,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, TokenIssuedResponse{
		Token:  token,
		SentAt: *updated.VerificationSentAt,
	})
}

func (h *Handler) ConfirmVerification(w http.ResponseWriter, r *http.Request) {
	var req ConfirmVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.ConfirmVerification(
		r.Context(),
		req.Email,
		req.Token,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) ||
			errors.Is(err, ErrTokenMismatch) {
			core.BadRequest(w, "invalid verification token")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(user))
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req RequestPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			h.accepted(w)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	updated, token, err := h.service.IssuePasswordResetToken(
		r.Context(),
		user.ID,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, TokenIssuedResponse{
		Token:  token,
		SentAt: *updated.PasswordResetAt,
	})
}

func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.ConfirmPasswordReset(
		r.Context(),
		req.Email,
		req.Token,
		req.NewPassword,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) ||
			errors.Is(err, ErrTokenMismatch) {
			core.BadRequest(w, "invalid reset token")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(user))
}

// ListAccounts returns a paginated account list (admin only).
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	params := ListAccountsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Verified: parseBoolQuery(r, "verified"),
		Active:   parseBoolQuery(r, "active"),
	}

	users, total, err := h.service.ListAccounts(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToAccountResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountIDParam(r)
	if !ok {
		core.NotFound(w, "account")
		return
	}

	if err := h.service.DeleteAccount(r.Context(), accountID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) accepted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusAccepted)
}

// accountIDParam extracts and validates the path id. A malformed id
// cannot name any account, so callers treat it as not found rather than
// letting postgres reject the uuid cast with a storage error.
func accountIDParam(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "accountID")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func parseBoolQuery(r *http.Request, key string) *bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}

	return &parsed
}
