package api

// Response wraps a successfully mapped model together with the raw payload
// it was decoded from.
type Response struct {
	// Model is the typed model produced by the request's ModelDecoder.
	Model any

	// Payload is the raw structured payload the model was decoded from.
	Payload map[string]any

	// Cached is true when the payload was served from the response cache
	// instead of the network.
	Cached bool

	// Pagination is present when the payload carried a paging map.
	Pagination *Pagination
}

// Pagination describes the position of a response inside a paginated
// collection, plus up to four continuation descriptors derived from the
// original request. Counts default to 0 when the payload omits them.
type Pagination struct {
	TotalCount   int
	Page         int
	ItemsPerPage int

	Next     *Request
	Previous *Request
	First    *Request
	Last     *Request
}
