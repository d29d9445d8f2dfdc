// Package settings merges and persists the user settings document.
package settings

import "maps"

// Keys whose children are merged one by one instead of being replaced.
var deepKeys = map[string]bool{
	"perCli":          true,
	"activeOverrides": true,
	"heartbeat":       true,
	"telegram":        true,
	"memory":          true,
}

// Deep keys whose children are themselves keyed by an identifier and
// merged one level further.
var perIdentifierKeys = map[string]bool{
	"perCli":          true,
	"activeOverrides": true,
}

// Merge applies patch to current and returns the result. current is never
// modified. Deep keys keep sibling children that the patch does not mention;
// every other key is replaced wholesale, nested maps included. A deep key
// whose patch value is not a map is replaced as well.
func Merge(current, patch map[string]any) map[string]any {
	next := make(map[string]any, len(current)+len(patch))
	maps.Copy(next, current)

	for key, value := range patch {
		child, ok := value.(map[string]any)
		if !deepKeys[key] || !ok {
			next[key] = value
			continue
		}
		existing, _ := current[key].(map[string]any)
		next[key] = mergeChildren(existing, child, perIdentifierKeys[key])
	}

	return next
}

func mergeChildren(existing, patch map[string]any, perIdentifier bool) map[string]any {
	out := make(map[string]any, len(existing)+len(patch))
	maps.Copy(out, existing)

	for id, value := range patch {
		if perIdentifier {
			inner, isMap := value.(map[string]any)
			prev, hadMap := existing[id].(map[string]any)
			if isMap && hadMap {
				merged := make(map[string]any, len(prev)+len(inner))
				maps.Copy(merged, prev)
				maps.Copy(merged, inner)
				out[id] = merged
				continue
			}
		}
		out[id] = value
	}

	return out
}
