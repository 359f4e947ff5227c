package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/training-dashboard/internal/application"
)

type accountService interface {
	ListAccounts(ctx context.Context, token string) ([]application.Account, error)
	CreateAccount(ctx context.Context, token string, params application.CreateAccountParams) (application.Account, error)
	UpdateAccount(ctx context.Context, token, accountID string, params application.UpdateAccountParams) (application.Account, error)
	DeleteAccount(ctx context.Context, token, accountID string) error
}

type AccountHandler struct {
	service   accountService
	responder responder
	logger    *slog.Logger
}

func NewAccountHandler(service accountService, logger *slog.Logger) *AccountHandler {
	base := defaultLogger(logger)
	return &AccountHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AccountHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AccountHandler", operation, attrs...)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	accounts, err := h.service.ListAccounts(r.Context(), extractTokenFromRequest(r))
	if err != nil {
		logger.ErrorContext(r.Context(), "account list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(accounts)).InfoContext(r.Context(), "accounts listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAccountDTOs(accounts))
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode account request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "username", req.Username)

	account, err := h.service.CreateAccount(r.Context(), extractTokenFromRequest(r), application.CreateAccountParams{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "account creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("account_id", account.ID).InfoContext(r.Context(), "account created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	accountID := strings.TrimSpace(chi.URLParam(r, "id"))
	if accountID == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing account id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAccountID)
		return
	}

	var req updateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Update", "account_id", accountID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode account update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "account_id", accountID)

	account, err := h.service.UpdateAccount(r.Context(), extractTokenFromRequest(r), accountID, application.UpdateAccountParams{
		Active: req.Active,
		Role:   req.Role,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "account update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	accountID := strings.TrimSpace(chi.URLParam(r, "id"))
	if accountID == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing account id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAccountID)
		return
	}

	logger := h.log(r.Context(), "Delete", "account_id", accountID)
	if err := h.service.DeleteAccount(r.Context(), extractTokenFromRequest(r), accountID); err != nil {
		logger.ErrorContext(r.Context(), "account delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type createAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateAccountRequest struct {
	Active *bool   `json:"active"`
	Role   *string `json:"role"`
}

type accountDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toAccountDTO(account application.Account) accountDTO {
	dto := accountDTO{
		ID:       account.ID,
		Username: account.Username,
		Role:     string(account.Role),
		Active:   account.Active,
	}
	if !account.CreatedAt.IsZero() {
		dto.CreatedAt = account.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toAccountDTOs(accounts []application.Account) []accountDTO {
	out := make([]accountDTO, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountDTO(account))
	}
	return out
}
