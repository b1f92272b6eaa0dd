package client

import (
	"context"
	"net/url"

	"github.com/shovels-data/shovels-go/pkg/pagination"
)

// maxContractorIDsPerRequest is the server-side limit on the id parameter of
// the contractors endpoint.
const maxContractorIDsPerRequest = 50

// SearchContractors searches contractors within the given geo IDs. A nil or
// empty geoIDs fans out over all US states. The permit_from and permit_to
// filters default to the last 180 days; one geo ID's failure never aborts
// the batch.
func (c *Client) SearchContractors(ctx context.Context, geoIDs []string, params url.Values, opts pagination.Options) ([]pagination.Record, error) {
	if len(geoIDs) == 0 {
		geoIDs = USStates
	}
	batchParams := c.withDateDefaults(params, "permit_from", "permit_to")

	results := c.fanOut("search_contractors", geoIDs, func(geoID string) ([]pagination.Record, error) {
		chainParams := cloneValues(batchParams)
		chainParams.Set("geo_id", geoID)
		return c.engine.FetchAll(ctx, "/contractors/search", chainParams, opts)
	})
	return results, nil
}

// GetContractorsByID fetches detail records for up to 50 contractor IDs in a
// single chain.
func (c *Client) GetContractorsByID(ctx context.Context, contractorIDs []string, opts pagination.Options) ([]pagination.Record, error) {
	if len(contractorIDs) > maxContractorIDsPerRequest {
		return nil, ErrTooManyContractorIDs
	}

	items, err := c.engine.FetchAll(ctx, "/contractors", url.Values{"id": contractorIDs}, opts)
	if err != nil {
		c.logger.Error().Err(err).Msg("Contractor lookup incomplete - returning partial results")
	}
	return items, nil
}

// GetPermitsByContractorID fetches all permits associated with the given
// contractor IDs.
func (c *Client) GetPermitsByContractorID(ctx context.Context, contractorIDs []string, opts pagination.Options) ([]pagination.Record, error) {
	results := c.fanOut("permits_by_contractor", contractorIDs, func(id string) ([]pagination.Record, error) {
		return c.engine.FetchAll(ctx, "/contractors/"+id+"/permits", nil, opts)
	})
	return results, nil
}

// GetContractorMetrics fetches monthly filtered metrics for the given
// contractor IDs. The params must carry property_type and tag; metric_from
// and metric_to default to the last 180 days.
func (c *Client) GetContractorMetrics(ctx context.Context, contractorIDs []string, params url.Values, opts pagination.Options) ([]pagination.Record, error) {
	if err := requireMetricFilters(params); err != nil {
		return nil, err
	}
	batchParams := c.withDateDefaults(params, "metric_from", "metric_to")

	results := c.fanOut("contractor_metrics", contractorIDs, func(id string) ([]pagination.Record, error) {
		return c.engine.FetchAll(ctx, "/contractors/"+id+"/metrics", batchParams, opts)
	})
	return results, nil
}

// ListContractorEmployees lists employees for the given contractor IDs.
func (c *Client) ListContractorEmployees(ctx context.Context, contractorIDs []string, opts pagination.Options) ([]pagination.Record, error) {
	results := c.fanOut("contractor_employees", contractorIDs, func(id string) ([]pagination.Record, error) {
		return c.engine.FetchAll(ctx, "/contractors/"+id+"/employees", nil, opts)
	})
	return results, nil
}
