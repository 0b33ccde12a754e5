// Package env builds the environment the backend server process runs with.
package env

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/slok/deskshell/internal/model"
)

var keyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LookupFunc resolves a variable from the shell environment, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ParseSpecs parses the `--backend-env` values. `KEY=VALUE` sets a value and a bare
// `KEY` forwards the shell's own value to the backend. A key can only be given once.
func ParseSpecs(specs []string, lookup LookupFunc) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	vars := make(map[string]string, len(specs))
	for _, spec := range specs {
		key, value, err := parseSpec(spec, lookup)
		if err != nil {
			return nil, err
		}
		if _, ok := vars[key]; ok {
			return nil, fmt.Errorf("backend variable %q is set more than once: %w", key, model.ErrNotValid)
		}
		vars[key] = value
	}

	return vars, nil
}

func parseSpec(spec string, lookup LookupFunc) (key, value string, err error) {
	key, value, hasValue := strings.Cut(spec, "=")
	if !keyRegexp.MatchString(key) {
		return "", "", fmt.Errorf("invalid backend variable %q: %w", spec, model.ErrNotValid)
	}
	if hasValue {
		return key, value, nil
	}

	value, ok := lookup(key)
	if !ok {
		return "", "", fmt.Errorf("backend variable %q can't be forwarded, the shell doesn't have it: %w", key, model.ErrNotFound)
	}
	return key, value, nil
}

// Merge merges the variable sets, later sets win. Nil when there is nothing set.
func Merge(sets ...map[string]string) map[string]string {
	var merged map[string]string
	for _, set := range sets {
		if len(set) == 0 {
			continue
		}
		if merged == nil {
			merged = map[string]string{}
		}
		maps.Copy(merged, set)
	}
	return merged
}

// Environ returns the backend process environment: the inherited `KEY=VALUE`
// entries without the overridden keys, followed by vars sorted by key.
func Environ(inherited []string, vars map[string]string) []string {
	environ := make([]string, 0, len(inherited)+len(vars))
	for _, kv := range inherited {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := vars[key]; ok {
			continue
		}
		environ = append(environ, kv)
	}

	for _, key := range slices.Sorted(maps.Keys(vars)) {
		environ = append(environ, key+"="+vars[key])
	}
	return environ
}
