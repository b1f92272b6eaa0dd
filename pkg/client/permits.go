package client

import (
	"context"
	"net/url"

	"github.com/shovels-data/shovels-go/pkg/pagination"
)

// SearchPermits searches permits within the given geo IDs. A nil or empty
// geoIDs fans out over all US states. The permit_from and permit_to filters
// default to the last 180 days; one geo ID's failure never aborts the batch.
func (c *Client) SearchPermits(ctx context.Context, geoIDs []string, params url.Values, opts pagination.Options) ([]pagination.Record, error) {
	if len(geoIDs) == 0 {
		geoIDs = USStates
	}
	batchParams := c.withDateDefaults(params, "permit_from", "permit_to")

	results := c.fanOut("search_permits", geoIDs, func(geoID string) ([]pagination.Record, error) {
		chainParams := cloneValues(batchParams)
		chainParams.Set("geo_id", geoID)
		return c.engine.FetchAll(ctx, "/permits/search", chainParams, opts)
	})
	return results, nil
}

// GetPermitsByID fetches detail records for the given permit IDs in a single
// chain.
func (c *Client) GetPermitsByID(ctx context.Context, permitIDs []string, opts pagination.Options) ([]pagination.Record, error) {
	items, err := c.engine.FetchAll(ctx, "/permits", url.Values{"id": permitIDs}, opts)
	if err != nil {
		c.logger.Error().Err(err).Msg("Permit lookup incomplete - returning partial results")
	}
	return items, nil
}
