package filterquery

import "sort"

// Compile lowers a parsed query to the backend's query DSL. A query with
// no clauses compiles to match_all. Field clauses become term queries,
// free-text clauses become a multi_match across the schema's columns,
// and clauses combine under bool.must. The schema's column list is
// sorted so the emitted body is stable.
func Compile(q *Query, schema Schema) map[string]any {
	if q == nil || len(q.Clauses) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}

	must := make([]any, 0, len(q.Clauses))
	for _, clause := range q.Clauses {
		if clause.Field != "" {
			must = append(must, map[string]any{
				"term": map[string]any{clause.Field: clause.Term},
			})
			continue
		}
		match := map[string]any{
			"query":   clause.Term,
			"lenient": true,
		}
		// Without known columns the backend falls back to its default
		// field set.
		if fields := schema.Fields(); len(fields) > 0 {
			match["fields"] = fields
		}
		must = append(must, map[string]any{"multi_match": match})
	}

	return map[string]any{"bool": map[string]any{"must": must}}
}

// Fields returns the schema's column ids in sorted order.
func (s Schema) Fields() []string {
	fields := make([]string, 0, len(s))
	for f := range s {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
