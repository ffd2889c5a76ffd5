package builtins

import (
	"sync"

	"github.com/fippli/fip/pkg/value"
)

var (
	namespacesOnce sync.Once
	namespaces     map[string]value.ObjectValue
)

// Namespaces returns the dotted-name builtins grouped as Objects, keyed by
// their prefix identifier (e.g. "Promise", "http"); the evaluator's
// identifier lookup falls back to this table when a name is not bound in the
// environment chain. The registry itself keys these builtins by
// their full dotted name ("Promise.resolve") for diagnostics and the
// currying machinery; FIP source reaches them through ordinary property
// access on the namespace identifier, e.g. `Promise.resolve(x)`. Computed
// once since Registry is read-only after init.
func Namespaces() map[string]value.ObjectValue {
	namespacesOnce.Do(func() {
		groups := map[string]map[string]value.Value{}
		for name, b := range Registry {
			prefix, field, ok := splitDotted(name)
			if !ok {
				continue
			}
			if groups[prefix] == nil {
				groups[prefix] = map[string]value.Value{}
			}
			groups[prefix][field] = &Ref{Def: b}
		}
		namespaces = make(map[string]value.ObjectValue, len(groups))
		for prefix, fields := range groups {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			namespaces[prefix] = value.NewObject(keys, fields)
		}
	})
	return namespaces
}

// splitDotted splits "Promise.resolve" into ("Promise", "resolve"). A leading
// dot (".map") marks a method-style builtin, not a namespace member.
func splitDotted(name string) (prefix, field string, ok bool) {
	for i := 1; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i], name[i+1:], true
		}
	}
	return "", "", false
}
