package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/vaporisers/reelist/internal/services"
	"github.com/vaporisers/reelist/internal/shared"
	"github.com/vaporisers/reelist/internal/web"
)

// RecoveryHandler serves the password reset page.
//
// GET renders the form with the userId and secret carried by the emailed
// recovery link; POST validates the submission and completes the recovery
// against the auth service. Implements the Handler interface for registration
// with a Router.
type RecoveryHandler struct {
	auth     services.AuthAPI
	renderer *web.Renderer
	logger   *log.Logger
}

// NewRecoveryHandler creates a recovery handler backed by the given auth service.
func NewRecoveryHandler(auth services.AuthAPI, renderer *web.Renderer, logger *log.Logger) *RecoveryHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RecoveryHandler{auth: auth, renderer: renderer, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *RecoveryHandler) Routes() []string {
	return []string{"/reset"}
}

// ServeHTTP handles the reset form.
func (h *RecoveryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.renderForm(w, r)
	case http.MethodPost:
		h.completeRecovery(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RecoveryHandler) renderForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	page := web.ResetPage{
		UserID: r.URL.Query().Get("userId"),
		Secret: r.URL.Query().Get("secret"),
	}

	if page.UserID == "" || page.Secret == "" {
		w.WriteHeader(http.StatusBadRequest)
		page.Message = "Invalid reset link."
	}

	h.render(w, page)
}

func (h *RecoveryHandler) completeRecovery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	page := web.ResetPage{
		UserID: r.PostFormValue("userId"),
		Secret: r.PostFormValue("secret"),
	}
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirmPassword")

	switch {
	case page.UserID == "" || page.Secret == "":
		w.WriteHeader(http.StatusBadRequest)
		page.Message = "Invalid reset link."
	case password == "" || password != confirm:
		w.WriteHeader(http.StatusBadRequest)
		page.Message = "Passwords do not match."
	default:
		if err := h.auth.UpdateRecovery(r.Context(), page.UserID, page.Secret, password); err != nil {
			h.logger.Error("password recovery failed", "user_id", page.UserID, "error", err)
			w.WriteHeader(http.StatusBadGateway)
			page.Message = "Failed to reset password. Please try again."
		} else {
			h.logger.Info("password recovery completed", "user_id", page.UserID)
			page.Message = "Password reset successful. You can now log in."
			page.Success = true
		}
	}

	h.render(w, page)
}

func (h *RecoveryHandler) render(w http.ResponseWriter, page web.ResetPage) {
	if err := h.renderer.RenderReset(w, page); err != nil {
		h.logger.Error("failed to render reset page", "error", err)
	}
}
