package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	invitationsdomain "stable-app-go/internal/domain/invitations"
)

type inviteRequest struct {
	Email string `json:"email"`
}

type invitationResponse struct {
	ID            string    `json:"id"`
	InvitedUserID string    `json:"invited_user_id"`
	InvitedBy     string    `json:"invited_by"`
	StableID      string    `json:"stable_id"`
	StableName    string    `json:"stable_name"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *Handlers) InviteMember(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	invitation, err := h.Invitations.Invite(r.Context(), user.ID, req.Email)
	if err != nil {
		h.fail(w, "invitations.invite: invite failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toInvitationResponse(invitation))
}

func (h *Handlers) GetPendingInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	invitation, err := h.Invitations.PendingFor(r.Context(), user.ID)
	if err != nil {
		h.fail(w, "invitations.pending: lookup failed", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, toInvitationResponse(invitation))
}

func (h *Handlers) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	invitationID := strings.TrimSpace(chi.URLParam(r, "id"))
	stable, err := h.Invitations.Accept(r.Context(), user.ID, invitationID)
	if err != nil {
		h.fail(w, "invitations.accept: accept failed", err, "user_id", user.ID, "invitation_id", invitationID)
		return
	}

	writeJSON(w, http.StatusOK, toStableResponse(stable, user.ID))
}

func (h *Handlers) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	invitationID := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.Invitations.Decline(r.Context(), user.ID, invitationID); err != nil {
		h.fail(w, "invitations.decline: decline failed", err, "user_id", user.ID, "invitation_id", invitationID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toInvitationResponse(invitation *invitationsdomain.Invitation) invitationResponse {
	return invitationResponse{
		ID:            invitation.ID,
		InvitedUserID: invitation.InvitedUserID,
		InvitedBy:     invitation.InvitedBy,
		StableID:      invitation.StableID,
		StableName:    invitation.StableName,
		Status:        invitation.Status,
		CreatedAt:     invitation.CreatedAt,
	}
}
