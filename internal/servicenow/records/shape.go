package records

// Shape flattens one raw record. Fields may arrive as plain scalars or as
// {display_value, value, link} triplets when display values were requested;
// either way the caller gets a flat map. preferDisplay picks the display
// side of a triplet when both are present.
func Shape(raw map[string]any, preferDisplay bool) map[string]any {
	shaped := make(map[string]any, len(raw))
	for field, v := range raw {
		shaped[field] = shapeField(v, preferDisplay)
	}
	return shaped
}

// ShapeList flattens a list of raw records.
func ShapeList(raw []map[string]any, preferDisplay bool) []map[string]any {
	shaped := make([]map[string]any, len(raw))
	for i, record := range raw {
		shaped[i] = Shape(record, preferDisplay)
	}
	return shaped
}

func shapeField(v any, preferDisplay bool) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}

	// Reference fields arrive as {value, link}; display mode adds
	// display_value. Anything else passes through untouched.
	value, hasValue := m["value"]
	display, hasDisplay := m["display_value"]
	if !hasValue && !hasDisplay {
		return v
	}

	if preferDisplay && hasDisplay && display != "" {
		return display
	}
	if hasValue {
		return value
	}
	return display
}
