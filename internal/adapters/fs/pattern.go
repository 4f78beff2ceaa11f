package fs

import (
	"path"
	"strings"
)

const globstar = "**"

// validatePattern reports a malformed pattern before any matching happens.
func validatePattern(pattern string) error {
	for _, seg := range strings.Split(pattern, "/") {
		if seg == globstar {
			continue
		}
		if _, err := path.Match(seg, ""); err != nil {
			return err
		}
	}
	return nil
}

// matchPattern reports whether the slash-separated relative path matches pattern.
// A "**" segment matches zero or more path segments; other segments follow path.Match.
func matchPattern(pattern, rel string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(rel, "/"))
}

func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == globstar {
			rest := pattern[1:]
			for i := 0; i <= len(name); i++ {
				if matchSegments(rest, name[i:]) {
					return true
				}
			}
			return false
		}

		if len(name) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], name[0]); !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}
