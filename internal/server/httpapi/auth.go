package httpapi

import (
	"errors"
	"net/http"

	"github.com/expreshop/expreshop/internal/common"
	"github.com/expreshop/expreshop/internal/server/models"
)

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// userResponse is the public account representation. It never carries the
// password hash.
type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Disabled bool   `json:"disabled"`
	Role     string `json:"role"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Disabled: u.Disabled,
		Role:     u.Role,
	}
}

type passwordRecoveryRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// handleLogin accepts OAuth2-style form credentials and returns a bearer
// token. Unknown accounts and wrong passwords are indistinguishable to the
// client.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := s.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) || errors.Is(err, common.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "incorrect username or password")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.FullName, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUsernameTaken):
			writeError(w, http.StatusBadRequest, "username already taken")
		case errors.Is(err, common.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "email already in use")
		default:
			s.logger.Error(r.Context(), "register failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	if err := s.auth.DeleteUser(r.Context(), username); err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error(r.Context(), "delete user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "user deleted"})
}

// handlePasswordRecovery acknowledges as soon as the email is queued; the
// send outcome is not part of the response.
func (s *Server) handlePasswordRecovery(w http.ResponseWriter, r *http.Request) {
	var req passwordRecoveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.auth.RequestPasswordRecovery(r.Context(), req.Email); err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error(r.Context(), "password recovery failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "recovery email sent"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := s.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken):
			writeError(w, http.StatusBadRequest, "invalid or expired token")
		case errors.Is(err, common.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			s.logger.Error(r.Context(), "password reset failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}
