package main

import (
	"strings"

	"github.com/google/uuid"
)

// uniqueSuffixLen is how many hex digits of a random UUID are appended
// by --unique.
const uniqueSuffixLen = 8

// fixtureName returns name, or name with a short random suffix when unique
// is set, so repeated runs against one server do not collide.
func fixtureName(name string, unique bool) string {
	if !unique {
		return name
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:uniqueSuffixLen]

	return name + "-" + suffix
}
