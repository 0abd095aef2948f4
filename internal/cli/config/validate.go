package config

import (
	"fmt"

	"github.com/indexlens/indexlens/internal/preview"
)

// Validate checks that the configuration is usable. It does not reach
// the cluster; connectivity problems surface on the first request.
func (c *Config) Validate() error {
	if c.Cluster == nil || c.Cluster.URL == "" {
		return fmt.Errorf("cluster.url is required")
	}

	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "md", "json":
	default:
		return fmt.Errorf("unknown output format %q (want auto, text, markdown, or json)", c.OutputFormat)
	}

	switch c.FieldTypes {
	case "", "keyword", "string", "all":
	default:
		return fmt.Errorf("unknown field_types %q (want keyword, string, or all)", c.FieldTypes)
	}

	return nil
}

// Normalize clamps out-of-range values into their working ranges and
// returns a warning line per adjustment.
func (c *Config) Normalize() []string {
	var warnings []string

	if c.RowLimit <= 0 {
		warnings = append(warnings, fmt.Sprintf("row_limit %d is not positive, using %d", c.RowLimit, DefaultRowLimit))
		c.RowLimit = DefaultRowLimit
	}
	if c.RowLimit > preview.MaxRowLimit {
		warnings = append(warnings, fmt.Sprintf("row_limit %d exceeds the maximum, clamping to %d", c.RowLimit, preview.MaxRowLimit))
		c.RowLimit = preview.MaxRowLimit
	}

	return warnings
}
