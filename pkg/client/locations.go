package client

import (
	"context"
	"net/url"

	"github.com/shovels-data/shovels-go/pkg/pagination"
)

// Location levels accepted by the search and detail methods. The Shovels API
// organizes geography as states > counties > jurisdictions > cities >
// zipcodes > addresses, each addressed by an opaque geo ID.
const (
	LevelStates        = "states"
	LevelCounties      = "counties"
	LevelJurisdictions = "jurisdictions"
	LevelCities        = "cities"
	LevelZipcodes      = "zipcodes"
	LevelAddresses     = "addresses"
)

// SearchLocations searches locations of the given level by free text.
// Single-page endpoint; returns the matching location records.
func (c *Client) SearchLocations(ctx context.Context, query, level string) ([]pagination.Record, error) {
	params := url.Values{"q": {query}}
	page, err := c.FetchPage(ctx, "/"+level+"/search", params)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// GetLocationMonthlyMetrics fetches monthly permit metrics for the given geo
// IDs at the given level. The params must carry property_type and tag;
// metric_from and metric_to default to the last 180 days. Failures for one
// geo ID are logged and skipped.
func (c *Client) GetLocationMonthlyMetrics(ctx context.Context, geoIDs []string, level string, params url.Values, opts pagination.Options) ([]pagination.Record, error) {
	if err := requireMetricFilters(params); err != nil {
		return nil, err
	}
	batchParams := c.withDateDefaults(params, "metric_from", "metric_to")

	results := c.fanOut("location_monthly_metrics", geoIDs, func(geoID string) ([]pagination.Record, error) {
		return c.engine.FetchAll(ctx, "/"+level+"/"+geoID+"/metrics/monthly", batchParams, opts)
	})
	return results, nil
}

// GetLocationCurrentMetrics fetches current permit metrics for the given geo
// IDs at the given level. The params must carry property_type and tag.
func (c *Client) GetLocationCurrentMetrics(ctx context.Context, geoIDs []string, level string, params url.Values, opts pagination.Options) ([]pagination.Record, error) {
	if err := requireMetricFilters(params); err != nil {
		return nil, err
	}
	batchParams := cloneValues(params)

	results := c.fanOut("location_current_metrics", geoIDs, func(geoID string) ([]pagination.Record, error) {
		return c.engine.FetchAll(ctx, "/"+level+"/"+geoID+"/metrics/current", batchParams, opts)
	})
	return results, nil
}

// GetLocationDetails fetches detail records for the given geo IDs at the
// given level. For LevelAddresses use GetResidents instead.
func (c *Client) GetLocationDetails(ctx context.Context, geoIDs []string, level string, opts pagination.Options) ([]pagination.Record, error) {
	if level == LevelAddresses {
		return nil, ErrAddressLevel
	}

	results := c.fanOut("location_details", geoIDs, func(geoID string) ([]pagination.Record, error) {
		return c.engine.FetchAll(ctx, "/"+level, url.Values{"geo_id": {geoID}}, opts)
	})
	return results, nil
}

// GetResidents fetches residents for the given address geo IDs.
func (c *Client) GetResidents(ctx context.Context, geoIDs []string, opts pagination.Options) ([]pagination.Record, error) {
	results := c.fanOut("residents", geoIDs, func(geoID string) ([]pagination.Record, error) {
		return c.engine.FetchAll(ctx, "/addresses/"+geoID+"/residents", nil, opts)
	})
	return results, nil
}
