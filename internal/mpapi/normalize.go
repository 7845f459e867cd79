package mpapi

// Normalize turns a decoded response into a list of records. An object with a
// list-typed "data" key yields that list, a bare list yields itself, anything
// else yields nothing. Non-object entries are dropped.
func Normalize(body any) []Record {
	var items []any
	switch v := body.(type) {
	case []any:
		items = v
	case map[string]any:
		data, ok := v["data"].([]any)
		if !ok {
			return []Record{}
		}
		items = data
	default:
		return []Record{}
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		if record, ok := item.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}

// hasNext reads pagination.has_next from an enveloped response.
func hasNext(body any) *bool {
	envelope, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	pagination, ok := envelope["pagination"].(map[string]any)
	if !ok {
		return nil
	}
	next, ok := pagination["has_next"].(bool)
	if !ok {
		return nil
	}
	return &next
}
