package handler

import (
	"net/http"
	"time"

	stablesdomain "stable-app-go/internal/domain/stables"
)

type createStableRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type stableResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	AdminID      string    `json:"admin_id"`
	Members      []string  `json:"members"`
	NumOfMembers int       `json:"num_of_members"`
	IsAdmin      bool      `json:"is_admin"`
	IsMember     bool      `json:"is_member"`
	CreatedAt    time.Time `json:"created_at"`
}

type memberResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	IsAdmin bool   `json:"is_admin"`
}

func (h *Handlers) ListStables(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.Stables.ListStables(r.Context())
	if err != nil {
		h.fail(w, "stables.list: list stables failed", err, "user_id", user.ID)
		return
	}

	response := make([]stableResponse, 0, len(items))
	for i := range items {
		response = append(response, toStableResponse(&items[i], user.ID))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateStable(w http.ResponseWriter, r *http.Request) {
	var req createStableRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stable, err := h.Stables.CreateStable(r.Context(), user.ID, stablesdomain.CreateStableInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		h.fail(w, "stables.create: create stable failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toStableResponse(stable, user.ID))
}

func (h *Handlers) GetStableMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stable, err := h.Stables.GetStableForUser(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "stables.get_me: get stable failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toStableResponse(stable, user.ID))
}

func (h *Handlers) ListStableMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	stable, err := h.Stables.RequireMember(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "stables.list_members: membership check failed", err, "user_id", user.ID)
		return
	}

	members, err := h.Stables.ListMembers(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "stables.list_members: list members failed", err, "user_id", user.ID, "stable_id", stable.ID)
		return
	}

	response := make([]memberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, memberResponse{
			ID:      member.ID,
			Name:    member.Name,
			Email:   member.Email,
			Phone:   member.Phone,
			IsAdmin: member.ID == stable.AdminID,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func toStableResponse(stable *stablesdomain.Stable, viewerID string) stableResponse {
	role := stablesdomain.DeriveRole(stable, viewerID)
	return stableResponse{
		ID:           stable.ID,
		Name:         stable.Name,
		Phone:        stable.Phone,
		Email:        stable.Email,
		AdminID:      stable.AdminID,
		Members:      stable.MemberIDs(),
		NumOfMembers: stable.NumOfMembers(),
		IsAdmin:      role.IsAdmin,
		IsMember:     role.IsMember,
		CreatedAt:    stable.CreatedAt,
	}
}
