package session

import (
	"unicode"
	"unicode/utf8"

	"github.com/mcoot/idlecoins/internal/model"
)

// DefaultMaxIDLength is the longest client-supplied id accepted
const DefaultMaxIDLength = 100

// ValidID reports whether a client-supplied id can be used as-is
func ValidID(id string, maxLen int) bool {
	if id == "" || len(id) > maxLen || !utf8.ValidString(id) {
		return false
	}
	for _, r := range id {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// resolveID returns the id to use for a connection and whether it was
// generated here and must be sent back to the client
func (m *Manager) resolveID(requested string) (model.PlayerID, bool) {
	if ValidID(requested, m.cfg.MaxIDLength) {
		return model.PlayerID(requested), false
	}
	return model.PlayerID(m.random.NewID()), true
}
