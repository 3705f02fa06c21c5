// Package pagination walks paginated collections by following the
// continuation descriptors the dispatch engine attaches to each Response.
//
// The API reports pagination through a nested paging map with
// next/previous/first/last links; the engine turns those links into
// ready-to-dispatch request descriptors. This package chains them.
//
// Example usage:
//
//	walker := pagination.NewWalker(engine, pagination.DefaultConfig())
//	pages, err := walker.FetchAll(ctx, req)
//
// The walker:
//   - Dispatches the first descriptor through the engine
//   - Follows Next continuations until the chain ends
//   - Stops at the configured page cap
//   - Returns the pages fetched so far on mid-chain failure
package pagination
