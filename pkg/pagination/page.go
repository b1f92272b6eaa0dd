package pagination

import (
	"bytes"
	"encoding/json"
)

// Record is a single opaque item returned by a Shovels endpoint. Records are
// kept as raw JSON so callers decide how (and whether) to decode them.
type Record = json.RawMessage

// ContinuationKind identifies how a page response continues, if at all.
type ContinuationKind int

const (
	// ContinuationNone means the chain is complete: the response carried
	// neither continuation field, or carried one with a null/empty value.
	ContinuationNone ContinuationKind = iota

	// ContinuationCursor means the response carried a non-empty next_cursor
	// token to send on the following request.
	ContinuationCursor

	// ContinuationPage means the response carried a next_page number to send
	// on the following request.
	ContinuationPage
)

// Continuation is the tagged continuation state of a page response.
// Exactly one of Cursor or Page is meaningful, selected by Kind.
type Continuation struct {
	Kind   ContinuationKind
	Cursor string
	Page   int
}

// PageResponse is one decoded page from a paginated Shovels endpoint.
type PageResponse struct {
	// Items are the records of this page, in response order.
	Items []Record

	// Size is the informational item count reported by the server, if any.
	Size int

	// Continuation tells the engine how to fetch the next page.
	Continuation Continuation
}

// pageEnvelope mirrors the wire schema. Pointers distinguish a null
// continuation value from an absent key only as far as decoding needs;
// both collapse to ContinuationNone.
type pageEnvelope struct {
	Items      []Record        `json:"items"`
	Size       int             `json:"size"`
	NextCursor json.RawMessage `json:"next_cursor"`
	NextPage   json.RawMessage `json:"next_page"`
}

// UnmarshalJSON decodes a page response and resolves its continuation.
// next_cursor takes precedence over next_page when both are present.
func (p *PageResponse) UnmarshalJSON(data []byte) error {
	var env pageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	p.Items = env.Items
	p.Size = env.Size
	p.Continuation = Continuation{Kind: ContinuationNone}

	// A present next_cursor key selects cursor mode for the chain even when
	// its value is null (which simply ends the chain); next_page is only
	// consulted when next_cursor is absent entirely.
	if len(env.NextCursor) > 0 {
		if isJSONNull(env.NextCursor) {
			return nil
		}
		var cursor string
		if err := json.Unmarshal(env.NextCursor, &cursor); err != nil {
			return err
		}
		if cursor != "" {
			p.Continuation = Continuation{Kind: ContinuationCursor, Cursor: cursor}
		}
		return nil
	}

	if len(env.NextPage) > 0 && !isJSONNull(env.NextPage) {
		var page int
		if err := json.Unmarshal(env.NextPage, &page); err != nil {
			return err
		}
		if page > 0 {
			p.Continuation = Continuation{Kind: ContinuationPage, Page: page}
		}
	}

	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
