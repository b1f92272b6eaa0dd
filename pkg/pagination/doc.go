// Package pagination implements the paginated fetch engine for the Shovels API.
//
// Shovels endpoints paginate in one of two ways: cursor-based (the response
// carries an opaque next_cursor token) or offset-based (the response carries a
// next_page number). The engine follows whichever continuation the first
// response uses, accumulates items across pages, and bounds the chain with an
// optional iteration ceiling.
//
// Example usage:
//
//	engine := pagination.NewEngine(client, logger)
//	items, err := engine.FetchAll(ctx, "/permits/search", params, pagination.Options{
//		Size:          100,
//		MaxIterations: 10,
//	})
//
// The engine:
//   - Validates page/size bounds before any network call
//   - Follows next_cursor or next_page until the server signals the end
//   - Stops at MaxIterations when set
//   - Returns partial results together with the error when a fetch fails
//
// A mid-chain failure is deliberately not retried: the accumulated items are
// handed back so callers fanning out over many identifiers can keep whatever
// was collected and move on.
package pagination
