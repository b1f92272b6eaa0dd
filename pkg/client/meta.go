package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/shovels-data/shovels-go/pkg/pagination"
)

// GetTags returns all available permit tags.
func (c *Client) GetTags(ctx context.Context) ([]pagination.Record, error) {
	page, err := c.FetchPage(ctx, "/list/tags", url.Values{"size": {"100"}})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// GetDataReleaseDate returns the date of the current Shovels data release.
func (c *Client) GetDataReleaseDate(ctx context.Context) (time.Time, error) {
	body, err := c.do(ctx, "/meta/release", nil)
	if err != nil {
		return time.Time{}, err
	}

	var release struct {
		ReleasedAt string `json:"released_at"`
	}
	if err := json.Unmarshal(body, &release); err != nil {
		shovelsErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return time.Time{}, fmt.Errorf("decode /meta/release response: %w", err)
	}

	releasedAt, err := time.Parse(dateFormat, release.ReleasedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse release date %q: %w", release.ReleasedAt, err)
	}
	return releasedAt, nil
}
