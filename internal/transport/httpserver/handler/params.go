package handler

import (
	"fmt"
	"strings"
	"time"

	eventsdomain "stable-app-go/internal/domain/events"
)

func parseDateRequired(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	return time.Parse(eventsdomain.DateLayout, value)
}

func parseDateParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(eventsdomain.DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
