package common

import (
	"net/http"
	"strconv"
)

// QueryInt reads an integer query parameter, falling back when the
// parameter is absent or not a number.
func QueryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
