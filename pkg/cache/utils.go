package cache

import (
	"fmt"
	"strings"
)

// Key builds a canonical cache key from an operation name and its
// parameters: "op:param1:param2". Parameters are joined in argument
// order so identical requests always canonicalize identically.
func Key(op string, params ...interface{}) string {
	if len(params) == 0 {
		return op
	}
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, op)
	for _, p := range params {
		parts = append(parts, fmt.Sprintf("%v", p))
	}
	return strings.Join(parts, ":")
}

// BuildPattern creates a Redis pattern for key matching.
func BuildPattern(prefix string) string {
	return fmt.Sprintf("%s*", prefix)
}
