// Package hexid generates and validates 24-character hexadecimal
// object identifiers: 4 bytes of unix time followed by 8 random bytes.
package hexid

import (
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

const Len = 24

// New returns a fresh 24-char lowercase hex id. Ids generated later
// sort after earlier ones at second granularity.
func New() string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], uint32(time.Now().Unix()))
	u := uuid.New()
	copy(b[4:], u[:8])
	return hex.EncodeToString(b[:])
}

// Valid reports whether s is a well-formed 24-char hex id.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
