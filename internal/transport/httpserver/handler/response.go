package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	announcementsdomain "stable-app-go/internal/domain/announcements"
	authdomain "stable-app-go/internal/domain/auth"
	eventsdomain "stable-app-go/internal/domain/events"
	horsesdomain "stable-app-go/internal/domain/horses"
	invitationsdomain "stable-app-go/internal/domain/invitations"
	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
	"stable-app-go/internal/transport/httpserver/middleware"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type domainError struct {
	target error
	status int
	code   string
}

// Validation errors carry their detail in the wrapped message, so they are reported with err.Error().
var domainErrors = []domainError{
	{authdomain.ErrNotAuthenticated, http.StatusUnauthorized, "invalid_token"},
	{authdomain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{authdomain.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{userdomain.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{authdomain.ErrInvalidSignUp, http.StatusBadRequest, "invalid_request"},
	{userdomain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{userdomain.ErrInvalidProfile, http.StatusBadRequest, "invalid_request"},
	{stablesdomain.ErrStableNotFound, http.StatusNotFound, "stable_not_found"},
	{stablesdomain.ErrAlreadyInStable, http.StatusConflict, "already_in_stable"},
	{stablesdomain.ErrInvalidStable, http.StatusBadRequest, "invalid_request"},
	{stablesdomain.ErrNotMember, http.StatusForbidden, "not_member"},
	{stablesdomain.ErrNotAdmin, http.StatusForbidden, "not_admin"},
	{invitationsdomain.ErrInvitationNotFound, http.StatusNotFound, "invitation_not_found"},
	{invitationsdomain.ErrAlreadyInvited, http.StatusConflict, "already_invited"},
	{invitationsdomain.ErrInvalidEmail, http.StatusBadRequest, "invalid_request"},
	{horsesdomain.ErrHorseNotFound, http.StatusNotFound, "horse_not_found"},
	{horsesdomain.ErrInvalidHorse, http.StatusBadRequest, "invalid_request"},
	{horsesdomain.ErrNotOwner, http.StatusForbidden, "not_owner"},
	{eventsdomain.ErrEventNotFound, http.StatusNotFound, "event_not_found"},
	{eventsdomain.ErrInvalidEvent, http.StatusBadRequest, "invalid_request"},
	{eventsdomain.ErrAlreadyTaken, http.StatusConflict, "event_taken"},
	{eventsdomain.ErrNotSignedUp, http.StatusForbidden, "not_signed_up"},
	{announcementsdomain.ErrInvalidAnnouncement, http.StatusBadRequest, "invalid_request"},
}

// fail maps known domain errors to their status and logs them as business errors.
// Anything else is logged as internal and answered with 500.
func (h *Handlers) fail(w http.ResponseWriter, action string, err error, args ...any) {
	for _, known := range domainErrors {
		if errors.Is(err, known.target) {
			h.log.BusinessError(action, err, args...)
			writeError(w, known.status, known.code, err.Error())
			return
		}
	}

	h.log.InternalError(action, err, args...)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func currentUser(w http.ResponseWriter, r *http.Request) (middleware.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return middleware.User{}, false
	}
	return user, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
