package testutil

import (
	"fmt"
	"strings"
)

// CatIndices renders a _cat/indices response body listing the given
// index names, each green/open with fixed count and size columns.
func CatIndices(names ...string) string {
	rows := make([]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, fmt.Sprintf(
			`{"health":"green","status":"open","index":%q,"docs.count":"100","store.size":"2048"}`, name))
	}
	return "[" + strings.Join(rows, ",") + "]"
}

// IndexProperties pairs an index name with the raw JSON of its mapping
// properties.
type IndexProperties struct {
	Index      string
	Properties string
}

// MappingsBody renders a get-mapping response body. Index order follows
// the argument order, which is what order-sensitive tests assert on.
func MappingsBody(indices ...IndexProperties) string {
	parts := make([]string, 0, len(indices))
	for _, ip := range indices {
		props := ip.Properties
		if props == "" {
			props = "{}"
		}
		parts = append(parts, fmt.Sprintf(`%q:{"mappings":{"properties":%s}}`, ip.Index, props))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// SearchBody renders a search response body with the given raw source
// documents and total hit count.
func SearchBody(total int, sources ...string) string {
	hits := make([]string, 0, len(sources))
	for _, src := range sources {
		hits = append(hits, fmt.Sprintf(`{"_source":%s}`, src))
	}
	return fmt.Sprintf(`{"hits":{"total":{"value":%d},"hits":[%s]}}`, total, strings.Join(hits, ","))
}

// JobsBody renders a maintenance-job catalog response body from
// id/pattern/state triples.
func JobsBody(jobs ...[3]string) string {
	parts := make([]string, 0, len(jobs))
	for _, j := range jobs {
		parts = append(parts, fmt.Sprintf(
			`{"config":{"id":%q,"index_pattern":%q,"rollup_index":"rollup-%s","cron":"*/30 * * * * ?"},"status":{"job_state":%q},"stats":{"documents_processed":5000,"pages_processed":10}}`,
			j[0], j[1], j[0], j[2]))
	}
	return `{"jobs":[` + strings.Join(parts, ",") + `]}`
}
