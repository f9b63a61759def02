package toggl_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/christopherklint97/balancr/internal/toggl"
)

func TestMeSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		if r.URL.Path != "/me" {
			t.Errorf("path = %q, want /me", r.URL.Path)
		}
		w.Write([]byte(`{"id": 42, "email": "a@b.c", "fullname": "Test User", "default_workspace_id": 7}`))
	}))
	defer srv.Close()

	client := toggl.NewClient("secret-token", srv.URL, nil)
	me, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}

	if gotUser != "secret-token" || gotPass != "api_token" {
		t.Errorf("basic auth = (%q, %q), want (token, \"api_token\")", gotUser, gotPass)
	}
	if me.ID != 42 || me.DefaultWorkspaceID != 7 {
		t.Errorf("me = %+v", me)
	}
}

func TestTimeEntriesSendsWindowParams(t *testing.T) {
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/time_entries" {
			t.Errorf("path = %q, want /me/time_entries", r.URL.Path)
		}
		q := r.URL.Query()
		gotStart, gotEnd = q.Get("start_date"), q.Get("end_date")
		w.Write([]byte(`[
			{"id": 1, "workspace_id": 7, "description": "standup", "start": "2024-06-03T10:00:00Z", "duration": 3600},
			{"id": 2, "workspace_id": 7, "description": "running", "start": "2024-06-03T12:00:00Z", "duration": -1717416000}
		]`))
	}))
	defer srv.Close()

	client := toggl.NewClient("key", srv.URL, nil)
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 7, 15, 0, 0, 0, time.UTC)

	entries, err := client.TimeEntries(context.Background(), start, end)
	if err != nil {
		t.Fatalf("TimeEntries failed: %v", err)
	}

	if gotStart != "2024-06-01T00:00:00Z" {
		t.Errorf("start_date = %q", gotStart)
	}
	if gotEnd != "2024-06-07T15:00:00Z" {
		t.Errorf("end_date = %q", gotEnd)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Duration != 3600 || entries[0].Description != "standup" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Duration >= 0 {
		t.Errorf("running entry duration = %d, want negative preserved", entries[1].Duration)
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("Incorrect username and/or password"))
	}))
	defer srv.Close()

	client := toggl.NewClient("bad-key", srv.URL, nil)
	_, err := client.Me(context.Background())
	if err == nil {
		t.Fatal("expected an error for a 403 response")
	}

	var apiErr *toggl.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != 403 {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if want := "Error: 403 - Incorrect username and/or password"; apiErr.Error() != want {
		t.Errorf("Error() = %q, want %q", apiErr.Error(), want)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := toggl.NewClient("bad-key", srv.URL, nil)
	if _, err := client.Me(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("server hit %d times for a 403, want 1", calls)
	}
}
