package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
)

// scriptedFetcher serves a fixed sequence of responses and records every call.
type scriptedFetcher struct {
	responses []*PageResponse
	errs      []error
	calls     int
	params    []url.Values
}

func (f *scriptedFetcher) FetchPage(ctx context.Context, endpoint string, params url.Values) (*PageResponse, error) {
	idx := f.calls
	f.calls++
	f.params = append(f.params, cloneValues(params))

	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx >= len(f.responses) {
		return nil, fmt.Errorf("unexpected call %d", idx+1)
	}
	return f.responses[idx], nil
}

func cursorPage(items []string, next string) *PageResponse {
	resp := &PageResponse{Continuation: Continuation{Kind: ContinuationNone}}
	if next != "" {
		resp.Continuation = Continuation{Kind: ContinuationCursor, Cursor: next}
	}
	for _, item := range items {
		resp.Items = append(resp.Items, Record(`"`+item+`"`))
	}
	return resp
}

func pageNumberPage(items []string, next int) *PageResponse {
	resp := cursorPage(items, "")
	if next > 0 {
		resp.Continuation = Continuation{Kind: ContinuationPage, Page: next}
	}
	return resp
}

func decodeStrings(t *testing.T, records []Record) []string {
	t.Helper()
	out := make([]string, 0, len(records))
	for _, rec := range records {
		var s string
		if err := json.Unmarshal(rec, &s); err != nil {
			t.Fatalf("Record decode failed: %v", err)
		}
		out = append(out, s)
	}
	return out
}

func TestFetchAll_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{"negative page", Options{Page: -1}, ErrInvalidPage},
		{"negative size", Options{Size: -1}, ErrInvalidSize},
		{"size too large", Options{Size: 101}, ErrInvalidSize},
		{"page 1 size 1 valid", Options{Page: 1, Size: 1}, nil},
		{"size 100 valid", Options{Size: 100}, nil},
		{"all unset valid", Options{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &scriptedFetcher{responses: []*PageResponse{cursorPage(nil, "")}}
			engine := NewEngine(fetcher, zerolog.Nop())

			_, err := engine.FetchAll(context.Background(), "/permits/search", nil, tt.opts)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FetchAll() error = %v, want %v", err, tt.wantErr)
				}
				if fetcher.calls != 0 {
					t.Errorf("Fetcher called %d times before validation, want 0", fetcher.calls)
				}
				return
			}
			if err != nil {
				t.Errorf("FetchAll() unexpected error: %v", err)
			}
		})
	}
}

func TestFetchAll_CursorChain(t *testing.T) {
	fetcher := &scriptedFetcher{responses: []*PageResponse{
		cursorPage([]string{"a", "b"}, "tok-1"),
		cursorPage([]string{"c"}, "tok-2"),
		cursorPage([]string{"d", "e"}, ""),
	}}
	engine := NewEngine(fetcher, zerolog.Nop())

	items, err := engine.FetchAll(context.Background(), "/contractors/search", nil, Options{})
	if err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}

	got := decodeStrings(t, items)
	want := []string{"a", "b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("Items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Item %d = %q, want %q", i, got[i], want[i])
		}
	}

	if fetcher.calls != 3 {
		t.Errorf("Fetch calls = %d, want 3", fetcher.calls)
	}

	// The second call must carry the first response's cursor.
	if cursor := fetcher.params[1].Get("cursor"); cursor != "tok-1" {
		t.Errorf("Second request cursor = %q, want %q", cursor, "tok-1")
	}
	if cursor := fetcher.params[2].Get("cursor"); cursor != "tok-2" {
		t.Errorf("Third request cursor = %q, want %q", cursor, "tok-2")
	}
}

func TestFetchAll_PageNumberChain(t *testing.T) {
	fetcher := &scriptedFetcher{responses: []*PageResponse{
		pageNumberPage([]string{"a"}, 2),
		pageNumberPage([]string{"b"}, 3),
		pageNumberPage([]string{"c"}, 0),
	}}
	engine := NewEngine(fetcher, zerolog.Nop())

	items, err := engine.FetchAll(context.Background(), "/permits/search", nil, Options{Page: 1, Size: 50})
	if err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}

	if len(items) != 3 {
		t.Errorf("Items = %d, want 3", len(items))
	}
	if fetcher.calls != 3 {
		t.Errorf("Fetch calls = %d, want 3", fetcher.calls)
	}

	if page := fetcher.params[0].Get("page"); page != "1" {
		t.Errorf("First request page = %q, want %q", page, "1")
	}
	if page := fetcher.params[1].Get("page"); page != "2" {
		t.Errorf("Second request page = %q, want %q", page, "2")
	}
	if size := fetcher.params[2].Get("size"); size != "50" {
		t.Errorf("Third request size = %q, want %q", size, "50")
	}
}

func TestFetchAll_MaxIterations(t *testing.T) {
	// Every response advertises another cursor; only the ceiling stops the chain.
	responses := make([]*PageResponse, 10)
	for i := range responses {
		responses[i] = cursorPage([]string{fmt.Sprintf("item-%d", i)}, fmt.Sprintf("tok-%d", i))
	}
	fetcher := &scriptedFetcher{responses: responses}
	engine := NewEngine(fetcher, zerolog.Nop())

	items, err := engine.FetchAll(context.Background(), "/permits/search", nil, Options{MaxIterations: 4})
	if err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}

	if fetcher.calls != 4 {
		t.Errorf("Fetch calls = %d, want 4", fetcher.calls)
	}
	if len(items) != 4 {
		t.Errorf("Items = %d, want 4", len(items))
	}
}

func TestFetchAll_PartialResultsOnFailure(t *testing.T) {
	fetchErr := errors.New("HTTP 502: bad gateway")
	fetcher := &scriptedFetcher{
		responses: []*PageResponse{
			cursorPage([]string{"a", "b"}, "tok-1"),
			cursorPage([]string{"c"}, "tok-2"),
			nil,
		},
		errs: []error{nil, nil, fetchErr},
	}
	engine := NewEngine(fetcher, zerolog.Nop())

	items, err := engine.FetchAll(context.Background(), "/permits/search", nil, Options{})

	if !errors.Is(err, fetchErr) {
		t.Errorf("FetchAll() error = %v, want %v", err, fetchErr)
	}
	if fetcher.calls != 3 {
		t.Errorf("Fetch calls = %d, want 3", fetcher.calls)
	}

	got := decodeStrings(t, items)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Partial items = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFetchAll_SinglePage(t *testing.T) {
	fetcher := &scriptedFetcher{responses: []*PageResponse{
		cursorPage([]string{"x", "y"}, ""),
	}}
	engine := NewEngine(fetcher, zerolog.Nop())

	items, err := engine.FetchAll(context.Background(), "/list/tags", nil, Options{})
	if err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}

	if fetcher.calls != 1 {
		t.Errorf("Fetch calls = %d, want exactly 1", fetcher.calls)
	}

	got := decodeStrings(t, items)
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("Items = %v, want [x y]", got)
	}
}

func TestFetchAll_DoesNotMutateBaseParams(t *testing.T) {
	base := url.Values{"geo_id": {"CA"}}
	fetcher := &scriptedFetcher{responses: []*PageResponse{
		cursorPage([]string{"a"}, "tok"),
		cursorPage(nil, ""),
	}}
	engine := NewEngine(fetcher, zerolog.Nop())

	if _, err := engine.FetchAll(context.Background(), "/permits/search", base, Options{Size: 10}); err != nil {
		t.Fatalf("FetchAll() failed: %v", err)
	}

	if len(base) != 1 || base.Get("geo_id") != "CA" {
		t.Errorf("Base params mutated: %v", base)
	}
	if fetcher.params[0].Get("geo_id") != "CA" {
		t.Error("Base params not forwarded to the fetcher")
	}
}
