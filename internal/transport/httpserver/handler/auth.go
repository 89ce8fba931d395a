package handler

import (
	"net/http"
	"time"

	authdomain "stable-app-go/internal/domain/auth"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	result, err := h.Auth.SignUp(r.Context(), authdomain.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		h.fail(w, "auth.sign_up: sign up failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(result))
}

func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	result, err := h.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, "auth.sign_in: sign in failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if user.Token != "" {
		if err := h.Auth.SignOut(r.Context(), user.Token); err != nil {
			h.fail(w, "auth.sign_out: sign out failed", err, "user_id", user.ID)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.Users.GetProfile(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "auth.me: get profile failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(profile, nil))
}

func toAuthResponse(result *authdomain.AuthResult) authResponse {
	return authResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUserResponse(result.User, nil),
	}
}
