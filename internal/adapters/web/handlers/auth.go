package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/neuralsense/fusion/internal/adapters/web/middleware"
	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
)

// AuthHandler exposes login/logout/me over the session cookie set by Login.
type AuthHandler struct {
	auth  ports.AuthService
	audit ports.AuditService
}

// NewAuthHandler builds an auth handler bound to auth. audit may be nil,
// in which case login/logout events are not recorded.
func NewAuthHandler(auth ports.AuthService, audit ports.AuditService) *AuthHandler {
	return &AuthHandler{auth: auth, audit: audit}
}

// HandleLogin validates credentials and sets the session cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})

	if h.audit != nil {
		h.audit.Log(r.Context(), domain.ActionLogin, creds.Username, "")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// HandleLogout invalidates the session token and clears the cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil {
		user, _ := h.auth.ValidateToken(r.Context(), cookie.Value)
		h.auth.Logout(r.Context(), cookie.Value)
		if h.audit != nil && user != nil {
			h.audit.Log(r.Context(), domain.ActionLogout, user.Username, "")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:   middleware.SessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the authenticated user attached to the request by
// AuthMiddleware.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(*domain.User)
	if !ok || user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"username": user.Username,
		"role":     string(user.Role),
	})
}
