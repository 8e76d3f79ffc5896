package handlers

import (
	"net/http"
	"strings"

	"chargehub/internal/models"
	"chargehub/internal/service"
)

// AuthHandlers serves registration and login.
type AuthHandlers struct {
	auth *service.AuthService
}

// NewAuthHandlers builds AuthHandlers.
func NewAuthHandlers(auth *service.AuthService) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

// Register handles POST /api/auth/register. Accounts created here are always
// plain users; admin accounts come from the bootstrap config, never from this
// endpoint.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var problems []string
	if strings.TrimSpace(req.Username) == "" {
		problems = append(problems, "username is required")
	}
	if req.Password == "" {
		problems = append(problems, "password is required")
	}
	if !strings.Contains(req.Email, "@") {
		problems = append(problems, "valid email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		problems = append(problems, "name is required")
	}
	if len(problems) > 0 {
		writeValidationErrors(w, problems)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		*models.User
		Token     string `json:"token"`
		TokenType string `json:"tokenType"`
	}{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
	})
}
