package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/shovels-data/shovels-go/internal/testutil"
	"github.com/shovels-data/shovels-go/pkg/pagination"
)

// geoIDRecorder captures the geo_id and date-window parameters of every
// search request and serves per-geo responses.
type geoIDRecorder struct {
	mu      sync.Mutex
	queries []url.Values
	fail    map[string]bool
}

func (rec *geoIDRecorder) handler(w http.ResponseWriter, r *http.Request) {
	rec.mu.Lock()
	rec.queries = append(rec.queries, r.URL.Query())
	failing := rec.fail[r.URL.Query().Get("geo_id")]
	rec.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "boom"}`))
		return
	}

	body := map[string]any{
		"items":       []map[string]string{{"geo_id": r.URL.Query().Get("geo_id")}},
		"next_cursor": nil,
	}
	_ = json.NewEncoder(w).Encode(body)
}

func TestSearchPermits_FanOutIsolation(t *testing.T) {
	mock := testutil.NewMockShovels()
	defer mock.Close()

	rec := &geoIDRecorder{fail: map[string]bool{"TX": true}}
	mock.SetHandler("/permits/search", rec.handler)
	c := newTestClient(t, mock)

	items, err := c.SearchPermits(context.Background(), []string{"CA", "TX", "NY"}, nil, pagination.Options{})
	if err != nil {
		t.Fatalf("SearchPermits() failed: %v", err)
	}

	// TX fails; CA and NY still contribute.
	if len(items) != 2 {
		t.Fatalf("Items = %d, want 2", len(items))
	}

	var got []string
	for _, item := range items {
		var rec struct {
			GeoID string `json:"geo_id"`
		}
		if err := json.Unmarshal(item, &rec); err != nil {
			t.Fatalf("Item decode failed: %v", err)
		}
		got = append(got, rec.GeoID)
	}
	if got[0] != "CA" || got[1] != "NY" {
		t.Errorf("Items from geo IDs %v, want [CA NY]", got)
	}
}

func TestSearchPermits_DefaultDateWindow(t *testing.T) {
	mock := testutil.NewMockShovels()
	defer mock.Close()

	rec := &geoIDRecorder{}
	mock.SetHandler("/permits/search", rec.handler)
	c := newTestClient(t, mock)

	if _, err := c.SearchPermits(context.Background(), []string{"CA"}, nil, pagination.Options{}); err != nil {
		t.Fatalf("SearchPermits() failed: %v", err)
	}

	query := rec.queries[0]
	// fixedNow is 2026-08-26; 180 days earlier is 2026-02-27.
	if got := query.Get("permit_from"); got != "2026-02-27" {
		t.Errorf("permit_from = %q, want 2026-02-27", got)
	}
	if got := query.Get("permit_to"); got != "2026-08-26" {
		t.Errorf("permit_to = %q, want 2026-08-26", got)
	}
}

func TestSearchPermits_CallerDatesPreserved(t *testing.T) {
	mock := testutil.NewMockShovels()
	defer mock.Close()

	rec := &geoIDRecorder{}
	mock.SetHandler("/permits/search", rec.handler)
	c := newTestClient(t, mock)

	params := url.Values{"permit_from": {"2026-01-01"}, "permit_to": {"2026-06-30"}}
	if _, err := c.SearchPermits(context.Background(), []string{"CA"}, params, pagination.Options{}); err != nil {
		t.Fatalf("SearchPermits() failed: %v", err)
	}

	query := rec.queries[0]
	if got := query.Get("permit_from"); got != "2026-01-01" {
		t.Errorf("permit_from = %q, want caller value preserved", got)
	}
	if got := query.Get("permit_to"); got != "2026-06-30" {
		t.Errorf("permit_to = %q, want caller value preserved", got)
	}
}

func TestSearchPermits_NilGeoIDsCoversAllStates(t *testing.T) {
	mock := testutil.NewMockShovels()
	defer mock.Close()

	rec := &geoIDRecorder{}
	mock.SetHandler("/permits/search", rec.handler)
	c := newTestClient(t, mock)

	if _, err := c.SearchPermits(context.Background(), nil, nil, pagination.Options{}); err != nil {
		t.Fatalf("SearchPermits() failed: %v", err)
	}

	if len(rec.queries) != len(USStates) {
		t.Errorf("Requests = %d, want one per state (%d)", len(rec.queries), len(USStates))
	}
	if rec.queries[0].Get("geo_id") != "AL" {
		t.Errorf("First geo_id = %q, want AL", rec.queries[0].Get("geo_id"))
	}
}

func TestGetPermitsByID(t *testing.T) {
	mock := testutil.NewMockShovels()
	defer mock.Close()

	var gotQuery url.Values
	mock.SetHandler("/permits", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [{"id": "p1"}, {"id": "p2"}], "next_cursor": null}`))
	})
	c := newTestClient(t, mock)

	items, err := c.GetPermitsByID(context.Background(), []string{"p1", "p2"}, pagination.Options{})
	if err != nil {
		t.Fatalf("GetPermitsByID() failed: %v", err)
	}

	if len(items) != 2 {
		t.Errorf("Items = %d, want 2", len(items))
	}
	if ids := gotQuery["id"]; len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Errorf("id params = %v, want [p1 p2]", ids)
	}
}

func TestGetPermitsByID_BestEffortOnFailure(t *testing.T) {
	mock := testutil.NewMockShovels()
	defer mock.Close()
	mock.SetErrorResponse("/permits", http.StatusInternalServerError, "boom")
	c := newTestClient(t, mock)

	items, err := c.GetPermitsByID(context.Background(), []string{"p1"}, pagination.Options{})
	if err != nil {
		t.Errorf("GetPermitsByID() error = %v, want nil (best-effort)", err)
	}
	if len(items) != 0 {
		t.Errorf("Items = %d, want 0", len(items))
	}
}
