package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stable-app-go/internal/config"
	"stable-app-go/pkg/logger"
)

func testConfig() config.Config {
	return config.Config{
		HTTPPort:       "0",
		Env:            "test",
		StorageDriver:  config.StorageDriverMemory,
		AllowedOrigins: []string{"*"},
		MetricsEnabled: true,
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			Issuer:    "stable-app-test",
			TokenTTL:  time.Hour,
		},
		Stables:       config.StablesConfig{CacheTTL: time.Minute},
		Announcements: config.AnnouncementsConfig{RetentionDays: 7, SweepSchedule: "@every 1h"},
		Notify:        config.NotifyConfig{AppName: "Stalden"},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	a, err := Build(context.Background(), testConfig(), logger.Nop())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	server := httptest.NewServer(a.HTTPServer().Handler)
	t.Cleanup(func() {
		server.Close()
		if err := a.Close(); err != nil {
			t.Errorf("close app: %v", err)
		}
	})
	return server
}

func doJSON(t *testing.T, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, respBody
}

func expectStatus(t *testing.T, resp *http.Response, body []byte, status int) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected %d, got %d: %s", status, resp.StatusCode, string(body))
	}
}

func decode(t *testing.T, body []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("decode %s: %v", string(body), err)
	}
}

type authResult struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

func signUp(t *testing.T, baseURL, email, name string) authResult {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/sign-up", "", map[string]string{
		"email":    email,
		"password": "hemmelig123",
		"name":     name,
	})
	expectStatus(t, resp, body, http.StatusCreated)

	var result authResult
	decode(t, body, &result)
	if result.Token == "" || result.User.ID == "" {
		t.Fatalf("expected token and user id, got %s", string(body))
	}
	return result
}

func TestHealthAndUnauthenticated(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/health", "", nil)
	expectStatus(t, resp, body, http.StatusOK)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/stables/me", "", nil)
	expectStatus(t, resp, body, http.StatusUnauthorized)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, body, &envelope)
	if envelope.Error.Code == "" {
		t.Fatalf("expected error code, got %s", string(body))
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/stables/me", "not-a-token", nil)
	expectStatus(t, resp, body, http.StatusUnauthorized)
}

func TestSignInAndSignOut(t *testing.T) {
	server := newTestServer(t)
	signUp(t, server.URL, "ulla@example.com", "Ulla")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/auth/sign-up", "", map[string]string{
		"email": "ULLA@example.com", "password": "hemmelig123", "name": "Ulla 2",
	})
	expectStatus(t, resp, body, http.StatusConflict)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/auth/sign-in", "", map[string]string{
		"email": "ulla@example.com", "password": "forkert",
	})
	expectStatus(t, resp, body, http.StatusUnauthorized)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/auth/sign-in", "", map[string]string{
		"email": "ulla@example.com", "password": "hemmelig123",
	})
	expectStatus(t, resp, body, http.StatusOK)
	var session authResult
	decode(t, body, &session)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/auth/me", session.Token, nil)
	expectStatus(t, resp, body, http.StatusOK)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/auth/sign-out", session.Token, nil)
	expectStatus(t, resp, body, http.StatusNoContent)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/auth/me", session.Token, nil)
	expectStatus(t, resp, body, http.StatusUnauthorized)
}

func TestStableFlow(t *testing.T) {
	server := newTestServer(t)
	admin := signUp(t, server.URL, "ulla@example.com", "Ulla")
	rider := signUp(t, server.URL, "bo@example.com", "Bo")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/stables", admin.Token, map[string]string{"name": "Lunden"})
	expectStatus(t, resp, body, http.StatusCreated)
	var stable struct {
		ID           string   `json:"id"`
		Members      []string `json:"members"`
		NumOfMembers int      `json:"num_of_members"`
		IsAdmin      bool     `json:"is_admin"`
	}
	decode(t, body, &stable)
	if stable.NumOfMembers != 1 || !stable.IsAdmin {
		t.Fatalf("unexpected stable %s", string(body))
	}

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/stables/me/invitations", rider.Token, map[string]string{"email": "ulla@example.com"})
	expectStatus(t, resp, body, http.StatusNotFound)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/stables/me/invitations", admin.Token, map[string]string{"email": "bo@example.com"})
	expectStatus(t, resp, body, http.StatusCreated)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/stables/me/invitations", admin.Token, map[string]string{"email": "bo@example.com"})
	expectStatus(t, resp, body, http.StatusConflict)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/invitations/me", rider.Token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var invitation struct {
		ID         string `json:"id"`
		StableName string `json:"stable_name"`
	}
	decode(t, body, &invitation)
	if invitation.StableName != "Lunden" {
		t.Fatalf("unexpected invitation %s", string(body))
	}

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/invitations/"+invitation.ID+"/accept", rider.Token, nil)
	expectStatus(t, resp, body, http.StatusOK)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/stables/me/members", admin.Token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var members []struct {
		ID      string `json:"id"`
		IsAdmin bool   `json:"is_admin"`
	}
	decode(t, body, &members)
	if len(members) != 2 || members[0].ID != admin.User.ID || !members[0].IsAdmin || members[1].ID != rider.User.ID {
		t.Fatalf("unexpected members %s", string(body))
	}

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/stables/me/events", rider.Token, map[string]string{
		"date": "2026-06-01", "time": "08:00", "title": "Ind",
	})
	expectStatus(t, resp, body, http.StatusForbidden)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/stables/me/events", admin.Token, map[string]string{
		"date": "2026-06-01", "time": "08:00", "title": "Ind",
	})
	expectStatus(t, resp, body, http.StatusCreated)
	var event struct {
		ID       string  `json:"id"`
		UserName *string `json:"user_name"`
	}
	decode(t, body, &event)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/events/"+event.ID+"/signup", rider.Token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	decode(t, body, &event)
	if event.UserName == nil || *event.UserName != "Bo" {
		t.Fatalf("expected Bo signed up, got %s", string(body))
	}

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/events/"+event.ID+"/signup", admin.Token, nil)
	expectStatus(t, resp, body, http.StatusConflict)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/stables/me/announcements", admin.Token, map[string]string{
		"text": "<b>Hø</b> kommer i morgen",
	})
	expectStatus(t, resp, body, http.StatusCreated)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/stables/me/announcements", rider.Token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var announcements []struct {
		Text string `json:"text"`
	}
	decode(t, body, &announcements)
	if len(announcements) != 1 || announcements[0].Text != "Hø kommer i morgen" {
		t.Fatalf("unexpected announcements %s", string(body))
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/stables/me/calendar.ics", rider.Token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar") {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(body), "BEGIN:VEVENT") || !strings.Contains(string(body), "SUMMARY:Ind") {
		t.Fatalf("expected event in calendar, got %s", string(body))
	}
}

func TestHorseReplaceOverHTTP(t *testing.T) {
	server := newTestServer(t)
	owner := signUp(t, server.URL, "ulla@example.com", "Ulla")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/horses", owner.Token, map[string]interface{}{
		"name": "Luna", "breed": "Islandsk", "age": 5, "color": "brun",
		"feedings": []map[string]string{{"food": "Hø", "quantity": "3", "measurement": "kg"}},
	})
	expectStatus(t, resp, body, http.StatusCreated)
	var horse struct {
		ID       string            `json:"id"`
		Age      int               `json:"age"`
		Feedings []json.RawMessage `json:"feedings"`
	}
	decode(t, body, &horse)
	if len(horse.Feedings) != 1 {
		t.Fatalf("expected one feeding, got %s", string(body))
	}

	resp, body = doJSON(t, http.MethodPut, server.URL+"/api/horses/"+horse.ID, owner.Token, map[string]interface{}{
		"name": "Luna", "breed": "Islandsk", "age": 6, "color": "brun",
	})
	expectStatus(t, resp, body, http.StatusOK)
	decode(t, body, &horse)
	if horse.Age != 6 || len(horse.Feedings) != 0 {
		t.Fatalf("expected replaced horse, got %s", string(body))
	}

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/users/me", owner.Token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var me struct {
		HorsesCount *int64 `json:"horses_count"`
	}
	decode(t, body, &me)
	if me.HorsesCount == nil || *me.HorsesCount != 1 {
		t.Fatalf("expected horses_count 1, got %s", string(body))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/health", "", nil)
	expectStatus(t, resp, body, http.StatusOK)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/metrics", "", nil)
	expectStatus(t, resp, body, http.StatusOK)
	if !strings.Contains(string(body), "stable_app_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}
