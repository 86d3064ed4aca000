// Package reference generates the public reference codes exposed in URLs
// and API payloads, keeping internal storage IDs out of the wire format.
package reference

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a reference code of the form <PREFIX>-<ULID>. Codes are
// lexicographically sortable by creation time within a prefix.
func New(prefix string) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return prefix + "-" + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Valid reports whether code is a well-formed reference with the given prefix.
func Valid(prefix, code string) bool {
	rest, found := strings.CutPrefix(code, prefix+"-")
	if !found {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}
