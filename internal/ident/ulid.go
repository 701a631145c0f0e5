// Package ident generates sortable unique identifiers.
//
// Identifiers are ULIDs: a 48-bit millisecond timestamp followed by 80 bits
// of entropy, written as 26 Crockford Base32 characters. Within one
// millisecond a Generator increments the previous entropy instead of drawing
// new bytes, so its ids sort in the order they were issued.
package ident

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"strings"
	"sync"
	"time"
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Generator issues ULIDs. The zero value is not usable; call NewGenerator.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader

	lastMs  uint64
	last    [10]byte
	started bool
}

// NewGenerator returns a generator reading time from now and randomness from
// entropy. Nil arguments select the wall clock and crypto/rand.
func NewGenerator(now func() time.Time, entropy io.Reader) *Generator {
	if now == nil {
		now = time.Now
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{now: now, entropy: entropy}
}

// New returns the next ULID.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := uint64(g.now().UnixMilli())
	if g.started && ms <= g.lastMs {
		// Clock stood still or stepped back: stay on the last timestamp.
		ms = g.lastMs
		increment(g.last[:])
	} else {
		if _, err := io.ReadFull(g.entropy, g.last[:]); err != nil {
			increment(g.last[:])
		}
		g.lastMs = ms
		g.started = true
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ms<<16)
	copy(b[6:], g.last[:])
	return encode(b)
}

// XMLID returns an identifier usable as xml:id. ULIDs may start with a
// digit, which is not a valid NCName, so a prefix is always applied.
func (g *Generator) XMLID(prefix string) string {
	if prefix == "" {
		prefix = "id"
	}
	return prefix + "-" + strings.ToLower(g.New())
}

var std = NewGenerator(nil, nil)

// New returns a ULID from the process-wide generator.
func New() string { return std.New() }

// NewXMLID returns an xml:id from the process-wide generator.
func NewXMLID(prefix string) string { return std.XMLID(prefix) }

// increment adds one to a big-endian counter, wrapping on overflow.
func increment(b []byte) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return
		}
	}
}

// encode writes 128 bits as 26 base32 digits, most significant first. The
// leading digit carries only the top three bits.
func encode(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])
	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
