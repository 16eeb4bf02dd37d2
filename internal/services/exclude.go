package services

import "strings"

// MatchesExclusion reports whether path matches one of the skip patterns.
// Matching ignores case and treats '/' and '\' alike. A leading '*' matches a
// suffix, a trailing '*' matches a substring, anything else matches a
// substring. Empty patterns never match.
func MatchesExclusion(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	normalized := foldPath(path)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		switch {
		case strings.HasPrefix(pattern, "*"):
			if strings.HasSuffix(normalized, foldPath(pattern[1:])) {
				return true
			}
		case strings.HasSuffix(pattern, "*"):
			if strings.Contains(normalized, foldPath(pattern[:len(pattern)-1])) {
				return true
			}
		default:
			if strings.Contains(normalized, foldPath(pattern)) {
				return true
			}
		}
	}
	return false
}

func foldPath(value string) string {
	return strings.ToLower(strings.ReplaceAll(value, `\`, "/"))
}
