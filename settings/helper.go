// FILE: lixenwraith/reflector/settings/helper.go
package settings

import "strings"

// flattenMap converts a nested map[string]any to a flat map with dot-notation paths.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		newPath := key
		if prefix != "" {
			newPath = prefix + "." + key
		}

		if nestedMap, isMap := value.(map[string]any); isMap {
			for subPath, subValue := range flattenMap(nestedMap, newPath) {
				flat[subPath] = subValue
			}
		} else {
			flat[newPath] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// Intermediate maps are created, and a non-map segment is overwritten by one.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}

	current[segments[len(segments)-1]] = value
}

// navigateToPath returns the value under a dotted path, or nil when a segment is missing.
func navigateToPath(nested map[string]any, path string) any {
	path = strings.Trim(path, ".")
	if path == "" {
		return nested
	}

	var current any = nested
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = m[segment]; !ok {
			return nil
		}
	}
	return current
}

// isValidKeySegment checks if a single path segment is a valid TOML bare key:
// ASCII letters, digits, underscores and dashes.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isLetter && !isDigit && r != '_' && r != '-' {
			return false
		}
	}
	return true
}
