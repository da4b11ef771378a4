package processor

import (
	"fmt"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"github.com/brsample/remoteresource"
)

// Option keys understood by ParseConfig.
const (
	// OptionMarker is the fully-qualified name of the marker annotation.
	OptionMarker = "marker"
	// OptionAllowedTypes is a comma-separated list of the types that marked
	// properties may have, spelled as types.TypeString prints them with
	// full package paths (e.g. "string", "time.Time").
	OptionAllowedTypes = "allowedTypes"
	// OptionIgnoreGenericArgs is reserved for treating instantiated generic
	// types structurally. It must be a valid boolean but has no effect yet:
	// types are always compared by their exact name.
	OptionIgnoreGenericArgs = "ignoreGenericArgs"
)

// Config is the validated configuration of a pass.
type Config struct {
	Marker            string
	AllowedTypes      []string
	IgnoreGenericArgs bool
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		Marker:       remoteresource.MarkerName,
		AllowedTypes: []string{"string"},
	}
}

// ParseConfig validates the given options and overlays them on DefaultConfig.
// Any invalid or unknown option results in a *ConfigurationError.
func ParseConfig(options map[string]string) (Config, error) {
	cfg := DefaultConfig()

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := strings.TrimSpace(options[k])
		switch k {
		case OptionMarker:
			cfg.Marker = v
		case OptionAllowedTypes:
			var allowed []string
			for _, t := range strings.Split(v, ",") {
				t = strings.TrimSpace(t)
				if t == "" {
					return Config{}, configErrorf(k, token.Position{}, "empty type name in %q", options[k])
				}
				allowed = append(allowed, t)
			}
			cfg.AllowedTypes = allowed
		case OptionIgnoreGenericArgs:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, configErrorf(k, token.Position{}, "%q is not a boolean", options[k])
			}
			cfg.IgnoreGenericArgs = b
		default:
			return Config{}, configErrorf(k, token.Position{}, "unknown option")
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if err := validateMarker(c.Marker); err != nil {
		return &ConfigurationError{Option: OptionMarker, Err: err}
	}
	if len(c.AllowedTypes) == 0 {
		return configErrorf(OptionAllowedTypes, token.Position{}, "at least one type must be allowed")
	}
	return nil
}

func validateMarker(marker string) error {
	if marker == "" {
		return fmt.Errorf("marker annotation name must not be empty")
	}
	dot := strings.LastIndexByte(marker, '.')
	if dot <= 0 || dot < strings.LastIndexByte(marker, '/') {
		return fmt.Errorf("marker annotation name %q must be qualified with its package path", marker)
	}
	if !token.IsIdentifier(marker[dot+1:]) {
		return fmt.Errorf("marker annotation name %q does not end in a valid type name", marker)
	}
	return nil
}

// MarkerShortName returns the marker's type name without its package path.
func (c Config) MarkerShortName() string {
	return shortName(c.Marker)
}

// IsAllowed returns true if the given type name is in the allow-list.
func (c Config) IsAllowed(typeName string) bool {
	for _, t := range c.AllowedTypes {
		if t == typeName {
			return true
		}
	}
	return false
}

// AllowedDescription renders the allow-list for use in messages.
func (c Config) AllowedDescription() string {
	switch len(c.AllowedTypes) {
	case 1:
		return c.AllowedTypes[0]
	case 2:
		return c.AllowedTypes[0] + " or " + c.AllowedTypes[1]
	default:
		return strings.Join(c.AllowedTypes[:len(c.AllowedTypes)-1], ", ") + " or " + c.AllowedTypes[len(c.AllowedTypes)-1]
	}
}
