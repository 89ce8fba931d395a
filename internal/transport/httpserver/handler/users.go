package handler

import (
	"net/http"
	"time"

	userdomain "stable-app-go/internal/domain/user"
)

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	StableID    *string   `json:"stable_id"`
	HorsesCount *int64    `json:"horses_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GetMe returns the caller's profile card, including how many horses they own.
func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.Users.GetProfile(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "users.get_me: get profile failed", err, "user_id", user.ID)
		return
	}

	count, err := h.Horses.CountByOwner(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "users.get_me: count horses failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(profile, &count))
}

func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.Users.UpdateProfile(r.Context(), user.ID, req.Name, req.Phone)
	if err != nil {
		h.fail(w, "users.update_me: update profile failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(profile, nil))
}

func (h *Handlers) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	var req pushTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.Users.UpdatePushToken(r.Context(), user.ID, req.Token); err != nil {
		h.fail(w, "users.push_token: update failed", err, "user_id", user.ID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toUserResponse(profile *userdomain.User, horsesCount *int64) userResponse {
	var stableID *string
	if profile.HasStable() {
		id := profile.StableRef()
		stableID = &id
	}
	return userResponse{
		ID:          profile.ID,
		Name:        profile.Name,
		Email:       profile.Email,
		Phone:       profile.Phone,
		StableID:    stableID,
		HorsesCount: horsesCount,
		CreatedAt:   profile.CreatedAt,
	}
}
