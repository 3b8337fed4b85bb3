package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// loadYAML is a [kong.ConfigurationLoader] that reads flag values from a
// YAML document.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(loadYAML, "/path/to/config.yaml")
//
// Keys are flag names. Nested mappings are joined with '-', so the two
// documents below are equivalent:
//
//	log-level: debug
//	max-depth: 8
//	macro: [with_block, block]
//
//	log:
//	  level: debug
//	max_depth: 8
//	macro: [with_block, block]
//
// Underscores in keys match hyphens in flag names. Command-line flags
// override config file values.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, err
	}

	c := config{}
	c.flatten("", doc)

	return c, nil
}

// config implements [kong.Resolver] over flattened flag values.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Flags use hyphens (e.g., "log-level"), config keys may use
	// underscores. Keys are normalized to hyphens by flatten.
	if value, ok := r[normalizeKey(flag.Name)]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// flatten stores each leaf of doc under its hyphen-joined key path.
// Scalars are stored as strings, which every kong mapper accepts.
func (r config) flatten(prefix string, doc map[string]any) {
	for key, value := range doc {
		key = normalizeKey(key)
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch v := value.(type) {
		case map[string]any:
			r.flatten(key, v)

		case []any:
			list := make([]any, len(v))
			for i, item := range v {
				list[i] = scalar(item)
			}

			r[key] = list

		case nil:

		default:
			r[key] = scalar(v)
		}
	}
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.TrimSpace(key), "_", "-")
}

func scalar(v any) any {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}
