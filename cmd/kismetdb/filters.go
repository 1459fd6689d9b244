package main

import (
	"fmt"
	"strings"

	"github.com/jonathanfoster/python-kismet-db/v1/kismetdb"
)

// parseFilters turns repeated name=value flags into Filters. A name given
// more than once becomes a list, which string filters match as a set.
func parseFilters(raw []string) (kismetdb.Filters, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	values := map[string][]string{}
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid filter %q: want name=value", kv)
		}
		values[name] = append(values[name], value)
	}

	filters := make(kismetdb.Filters, len(values))
	for name, v := range values {
		if len(v) == 1 {
			filters[name] = v[0]
		} else {
			filters[name] = v
		}
	}
	return filters, nil
}
