package core

import (
	"errors"
	"fmt"
	"sort"
)

// Check is a single named quality check.
type Check struct {
	Key   string
	Label string
	Run   func(*Table) any
}

// checks is the fixed set of quality checks, keyed by URL-friendly name.
var checks = map[string]Check{
	"missing": {
		Key:   "missing",
		Label: "Missing values",
		Run:   func(t *Table) any { return MissingValues(t) },
	},
	"duplicates": {
		Key:   "duplicates",
		Label: "Duplicate rows",
		Run:   func(t *Table) any { return Duplicates(t) },
	},
	"outliers": {
		Key:   "outliers",
		Label: "Outliers (IQR)",
		Run:   func(t *Table) any { return Outliers(t) },
	},
	"mixed-types": {
		Key:   "mixed-types",
		Label: "Mixed types",
		Run:   func(t *Table) any { return MixedTypes(t) },
	},
	"validation": {
		Key:   "validation",
		Label: "Basic validation",
		Run:   func(t *Table) any { return BasicValidation(t) },
	},
}

// ErrUnknownCheck is returned by RunCheck for a key not in the registry.
var ErrUnknownCheck = errors.New("unknown check")

// GetCheck returns a check by key.
// Returns false if not found.
func GetCheck(key string) (Check, bool) {
	c, ok := checks[key]
	return c, ok
}

// CheckKeys returns all check keys.
// Sorted alphabetically.
func CheckKeys() []string {
	keys := make([]string, 0, len(checks))
	for k := range checks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RunCheck runs the named check against t.
func RunCheck(key string, t *Table) (any, error) {
	c, ok := GetCheck(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCheck, key)
	}
	return c.Run(t), nil
}
