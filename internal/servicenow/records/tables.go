// Package records builds per-entity CRUD services on top of the transport
// client and flattens the record store's field shapes into plain maps.
package records

import "strings"

// Table describes one known remote table.
type Table struct {
	Name          string
	Label         string
	DefaultFields []string
}

// tables is the registry of known entities. Unknown tables are still usable;
// they just get no default field selection.
var tables = map[string]Table{
	"incident": {
		Name:          "incident",
		Label:         "Incident",
		DefaultFields: []string{"sys_id", "number", "short_description", "state", "priority", "assigned_to", "sys_created_on"},
	},
	"change_request": {
		Name:          "change_request",
		Label:         "Change Request",
		DefaultFields: []string{"sys_id", "number", "short_description", "state", "type", "risk", "start_date", "end_date"},
	},
	"problem": {
		Name:          "problem",
		Label:         "Problem",
		DefaultFields: []string{"sys_id", "number", "short_description", "state", "known_error"},
	},
	"sc_request": {
		Name:          "sc_request",
		Label:         "Request",
		DefaultFields: []string{"sys_id", "number", "short_description", "request_state", "requested_for"},
	},
	"sys_user": {
		Name:          "sys_user",
		Label:         "User",
		DefaultFields: []string{"sys_id", "user_name", "name", "email", "active"},
	},
	"sys_user_group": {
		Name:          "sys_user_group",
		Label:         "Group",
		DefaultFields: []string{"sys_id", "name", "description", "manager"},
	},
}

// Lookup resolves a table by name or label, tolerating casing and a trailing
// plural "s".
func Lookup(name string) (Table, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if t, ok := tables[needle]; ok {
		return t, true
	}
	for _, t := range tables {
		if strings.ToLower(t.Label) == needle {
			return t, true
		}
	}
	if singular, found := strings.CutSuffix(needle, "s"); found {
		if t, ok := tables[singular]; ok {
			return t, true
		}
		for _, t := range tables {
			if strings.ToLower(t.Label) == singular {
				return t, true
			}
		}
	}
	return Table{}, false
}

// Known returns the registered table names, for error messages.
func Known() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	return names
}
