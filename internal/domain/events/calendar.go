package events

import (
	"context"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	stablesdomain "stable-app-go/internal/domain/stables"
)

const (
	calendarProductID = "-//stable-app//calendar//EN"
	eventDuration     = time.Hour
)

// ExportICS renders the actor's stable calendar as an iCalendar document.
func (s *Service) ExportICS(ctx context.Context, actorID string) (string, error) {
	stable, err := s.stables.RequireMember(ctx, actorID)
	if err != nil {
		return "", err
	}

	events, err := s.repo.ListEvents(ctx, stable.ID, ListFilter{})
	if err != nil {
		return "", err
	}
	SortEvents(events)

	return BuildCalendar(stable, events, s.now()), nil
}

func BuildCalendar(stable *stablesdomain.Stable, events []Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(stable.Name)

	for _, event := range events {
		ve := cal.AddEvent(event.ID + "@" + stable.ID)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetSummary(event.Title)

		description := event.Description
		if event.UserName != nil && *event.UserName != "" {
			description = strings.TrimSpace(description + "\nSigned up: " + *event.UserName)
		}
		if description != "" {
			ve.SetDescription(description)
		}

		if start, ok := eventStart(event); ok {
			ve.SetStartAt(start)
			ve.SetEndAt(start.Add(eventDuration))
		} else {
			ve.SetAllDayStartAt(event.Date)
			ve.SetAllDayEndAt(event.Date.AddDate(0, 0, 1))
		}
	}

	return cal.Serialize()
}

// eventStart combines the event date with its time of day. Free-text times yield an all-day event.
func eventStart(event Event) (time.Time, bool) {
	parsed, err := time.Parse(TimeLayout, strings.TrimSpace(event.Time))
	if err != nil {
		return time.Time{}, false
	}
	date := event.Date
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC), true
}
