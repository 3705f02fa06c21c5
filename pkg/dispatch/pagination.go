package dispatch

import "github.com/halcyon-io/halcyon-api-client/pkg/api"

// buildPagination inspects a payload for a nested "paging" map and, when
// present, derives up to four continuation descriptors from the original
// request. Counts live at the payload root and default to 0 when absent.
func buildPagination(req *api.Request, payload map[string]any) *api.Pagination {
	paging, ok := payload["paging"].(map[string]any)
	if !ok {
		return nil
	}

	pagination := &api.Pagination{
		TotalCount:   intField(payload, "total"),
		Page:         intField(payload, "page"),
		ItemsPerPage: intField(payload, "per_page"),
	}

	hasLink := false
	if path, ok := linkField(paging, "next"); ok {
		pagination.Next = req.CloneWithPath(path)
		hasLink = true
	}
	if path, ok := linkField(paging, "previous"); ok {
		pagination.Previous = req.CloneWithPath(path)
		hasLink = true
	}
	if path, ok := linkField(paging, "first"); ok {
		pagination.First = req.CloneWithPath(path)
		hasLink = true
	}
	if path, ok := linkField(paging, "last"); ok {
		pagination.Last = req.CloneWithPath(path)
		hasLink = true
	}
	if !hasLink {
		return nil
	}

	return pagination
}

func linkField(paging map[string]any, key string) (string, bool) {
	path, ok := paging[key].(string)
	return path, ok && path != ""
}

// intField reads a numeric payload field, defaulting to 0. JSON numbers
// decode as float64.
func intField(payload map[string]any, key string) int {
	switch value := payload[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return 0
	}
}
