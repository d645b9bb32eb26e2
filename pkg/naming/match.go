package naming

import "strings"

// Match reports whether resourceName belongs to the project, returning the
// pattern that matched. The empty string and the literal "null" (the AWS CLI
// sentinel for a resource with no name) never match.
//
// Matching is plain case-sensitive substring containment. That is
// deliberately broad: this gates destructive operations, so the result is
// only ever a pre-filter shown to a human before anything is deleted. A miss
// leaves an orphan; a false hit is caught at the confirmation step.
func Match(resourceName string, patterns []string) (string, bool) {
	if resourceName == "" || resourceName == "null" {
		return "", false
	}
	for _, p := range patterns {
		if p != "" && strings.Contains(resourceName, p) {
			return p, true
		}
	}
	return "", false
}

// Matches reports whether resourceName matches any of the project patterns.
func Matches(resourceName string, patterns []string) bool {
	_, ok := Match(resourceName, patterns)
	return ok
}
