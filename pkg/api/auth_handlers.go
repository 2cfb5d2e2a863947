package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/httputil"
	"github.com/gadaihub/backoffice/pkg/observability"
)

// LoginRequest is the password login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandlers serves login, logout and the SSO flow. Login and SSO are
// public routes; they sit before the guard layer by design since a
// caller cannot hold a token yet.
type AuthHandlers struct {
	service *auth.Service
	oidc    *auth.OIDCProvider
	metrics *observability.Metrics
}

// NewAuthHandlers creates the auth handler set. oidc and metrics may be
// nil; without oidc the SSO routes are not mounted.
func NewAuthHandlers(service *auth.Service, oidc *auth.OIDCProvider, metrics *observability.Metrics) *AuthHandlers {
	return &AuthHandlers{service: service, oidc: oidc, metrics: metrics}
}

// RegisterRoutes mounts auth endpoints on the router.
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", h.logout).Methods(http.MethodPost)
	if h.oidc != nil {
		router.HandleFunc("/auth/sso/login", h.ssoLogin).Methods(http.MethodGet)
		router.HandleFunc("/auth/sso/callback", h.ssoCallback).Methods(http.MethodGet)
	}
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") ||
		!httputil.RequireNonEmpty(w, req.Password, "password") {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.countLogin("password", false)
		httputil.RespondError(w, err)
		return
	}

	h.countLogin("password", true)
	httputil.WriteSuccess(w, result)
}

func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		httputil.WriteUnauthorized(w, "missing bearer token")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		httputil.RespondError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AuthHandlers) ssoLogin(w http.ResponseWriter, r *http.Request) {
	if err := h.oidc.InitiateLogin(w, r); err != nil {
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "failed to start SSO login")
	}
}

func (h *AuthHandlers) ssoCallback(w http.ResponseWriter, r *http.Request) {
	oidcUser, err := h.oidc.HandleCallback(r)
	if err != nil {
		h.countLogin("oidc", false)
		httputil.WriteUnauthorized(w, err.Error())
		return
	}

	result, err := h.service.LoginWithOIDC(r.Context(), oidcUser)
	if err != nil {
		h.countLogin("oidc", false)
		httputil.RespondError(w, err)
		return
	}

	h.countLogin("oidc", true)
	httputil.WriteSuccess(w, result)
}

func (h *AuthHandlers) countLogin(method string, ok bool) {
	if h.metrics == nil {
		return
	}
	status := "failed"
	if ok {
		status = "ok"
	}
	h.metrics.LoginsTotal.WithLabelValues(method, status).Inc()
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
