package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	KindInvitation   = "stable_invitation"
	KindAnnouncement = "stable_announcement"
)

var invitationEmail = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h2>You're invited to {{.StableName}}</h2>
	<p>Hi <strong>{{.InviteeName}}</strong>,</p>
	<p><strong>{{.InviterName}}</strong> invited you to join the stable <strong>{{.StableName}}</strong>.</p>
	<p>Open {{.AppName}} to accept or decline the invitation.</p>
</body>
</html>`))

func InvitationMessage(appName, stableName, inviterName, inviteeName, invitationID string) Message {
	var html bytes.Buffer
	_ = invitationEmail.Execute(&html, map[string]string{
		"AppName":     appName,
		"StableName":  stableName,
		"InviterName": inviterName,
		"InviteeName": inviteeName,
	})

	return Message{
		Kind:    KindInvitation,
		Subject: fmt.Sprintf("%s invited you to join %s on %s", inviterName, stableName, appName),
		Title:   fmt.Sprintf("Invitation to %s", stableName),
		Body:    fmt.Sprintf("%s invited you to join %s", inviterName, stableName),
		HTML:    html.String(),
		Data:    map[string]string{"invitation_id": invitationID},
	}
}

// AnnouncementMessage is push only; announcements are not emailed.
func AnnouncementMessage(stableName, text, announcementID string) Message {
	return Message{
		Kind:  KindAnnouncement,
		Title: stableName,
		Body:  truncate(text, 120),
		Data:  map[string]string{"announcement_id": announcementID},
	}
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
