// Package testutil provides testing utilities for the Shovels client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MockShovels is a configurable mock Shovels API server for testing.
type MockShovels struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockShovels creates a new mock Shovels API server.
func NewMockShovels() *MockShovels {
	mock := &MockShovels{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL, usable as the client's BaseURL.
func (m *MockShovels) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockShovels) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockShovels) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockShovels) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler sets a custom handler for a specific path.
func (m *MockShovels) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetJSONResponse configures a fixed JSON response for a path.
func (m *MockShovels) SetJSONResponse(path string, statusCode int, body string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	})
}

// SetCursorPages serves a cursor-paginated chain on path: each call returns
// the page selected by the cursor parameter, with next_cursor pointing at the
// following page and null on the last one.
func (m *MockShovels) SetCursorPages(path string, pages [][]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		idx := 0
		if cursor := r.URL.Query().Get("cursor"); cursor != "" {
			parsed, err := strconv.Atoi(cursor)
			if err != nil || parsed < 0 || parsed >= len(pages) {
				http.Error(w, `{"detail": "invalid cursor"}`, http.StatusBadRequest)
				return
			}
			idx = parsed
		}

		writePage(w, pages[idx], func() any {
			if idx+1 < len(pages) {
				return strconv.Itoa(idx + 1)
			}
			return nil
		}(), "next_cursor")
	})
}

// SetPagePages serves an offset-paginated chain on path: the page parameter
// (default 1) selects the page and next_page is null on the last one.
func (m *MockShovels) SetPagePages(path string, pages [][]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		pageNum := 1
		if page := r.URL.Query().Get("page"); page != "" {
			parsed, err := strconv.Atoi(page)
			if err != nil || parsed < 1 || parsed > len(pages) {
				http.Error(w, `{"detail": "invalid page"}`, http.StatusBadRequest)
				return
			}
			pageNum = parsed
		}

		writePage(w, pages[pageNum-1], func() any {
			if pageNum < len(pages) {
				return pageNum + 1
			}
			return nil
		}(), "next_page")
	})
}

// SetErrorResponse configures an error status for a path.
func (m *MockShovels) SetErrorResponse(path string, statusCode int, detail string) {
	m.SetJSONResponse(path, statusCode, fmt.Sprintf(`{"detail": %q}`, detail))
}

// writePage renders items (as JSON string records) plus the continuation
// field into a page response body.
func writePage(w http.ResponseWriter, items []string, next any, nextField string) {
	records := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		quoted, _ := json.Marshal(item)
		records = append(records, quoted)
	}

	body := map[string]any{
		"items":   records,
		"size":    len(records),
		nextField: next,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

// defaultHandler serves an empty single-page response.
func (m *MockShovels) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"items": [], "size": 0}`)
}
