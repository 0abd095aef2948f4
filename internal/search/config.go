package search

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// DefaultTimeout bounds requests when the configuration leaves the
// timeout unset.
const DefaultTimeout = 30 * time.Second

// Config configures access to the search cluster's REST API.
type Config struct {
	// URL is the cluster base URL.
	URL string `koanf:"url" yaml:"url" json:"url"`

	// Username and Password enable basic authentication when set.
	Username string `koanf:"username" yaml:"username,omitempty" json:"username,omitempty"`
	Password string `koanf:"password" yaml:"password,omitempty" json:"password,omitempty"`

	// Headers are added to every request.
	Headers map[string]string `koanf:"headers" yaml:"headers,omitempty" json:"headers,omitempty"`

	// Timeout bounds each request, connection setup included.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// SkipTLSVerify disables certificate verification.
	SkipTLSVerify bool `koanf:"skip_tls_verify" yaml:"skip_tls_verify,omitempty" json:"skip_tls_verify,omitempty"`

	// Options carries loose per-deployment request options; see
	// RequestOptions for the recognized keys.
	Options map[string]any `koanf:"options" yaml:"options,omitempty" json:"options,omitempty"`
}

// RequestOptions are deployment specific request options decoded from
// the Config.Options map.
type RequestOptions struct {
	// IgnoreUnavailable asks the backend to skip missing indices
	// instead of failing the whole search.
	IgnoreUnavailable bool `mapstructure:"ignore_unavailable"`

	// ExpandWildcards controls which index states patterns resolve to
	// (open, closed, hidden, all).
	ExpandWildcards string `mapstructure:"expand_wildcards"`

	// TrackTotalHits asks for exact hit counts instead of the backend's
	// default lower bound.
	TrackTotalHits bool `mapstructure:"track_total_hits"`
}

// DecodeOptions decodes the loose options map into RequestOptions.
// Unknown keys are rejected so typos surface at startup rather than as
// silently ignored settings.
func (c Config) DecodeOptions() (RequestOptions, error) {
	var opts RequestOptions
	if len(c.Options) == 0 {
		return opts, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &opts,
		ErrorUnused: true,
	})
	if err != nil {
		return opts, err
	}
	if err := decoder.Decode(c.Options); err != nil {
		return opts, fmt.Errorf("invalid search options: %w", err)
	}
	return opts, nil
}
