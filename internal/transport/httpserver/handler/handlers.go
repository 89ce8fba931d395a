package handler

import (
	announcementsdomain "stable-app-go/internal/domain/announcements"
	authdomain "stable-app-go/internal/domain/auth"
	eventsdomain "stable-app-go/internal/domain/events"
	horsesdomain "stable-app-go/internal/domain/horses"
	invitationsdomain "stable-app-go/internal/domain/invitations"
	stablesdomain "stable-app-go/internal/domain/stables"
	userdomain "stable-app-go/internal/domain/user"
	"stable-app-go/pkg/logger"
)

type Services struct {
	Auth          *authdomain.Service
	Users         *userdomain.Service
	Stables       *stablesdomain.Service
	Invitations   *invitationsdomain.Service
	Horses        *horsesdomain.Service
	Events        *eventsdomain.Service
	Announcements *announcementsdomain.Service
}

type Handlers struct {
	Auth          *authdomain.Service
	Users         *userdomain.Service
	Stables       *stablesdomain.Service
	Invitations   *invitationsdomain.Service
	Horses        *horsesdomain.Service
	Events        *eventsdomain.Service
	Announcements *announcementsdomain.Service
	log           logger.Logger
}

func New(services Services, log logger.Logger) *Handlers {
	return &Handlers{
		Auth:          services.Auth,
		Users:         services.Users,
		Stables:       services.Stables,
		Invitations:   services.Invitations,
		Horses:        services.Horses,
		Events:        services.Events,
		Announcements: services.Announcements,
		log:           log,
	}
}
