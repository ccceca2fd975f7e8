package prose

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Buffer is a fixed-capacity circular window over the most recent tokens.
// Empty slots hold "" until the buffer has been filled once.
type Buffer struct {
	size int
	pos  int
	data []string
}

// NewBuffer returns an empty buffer holding at most size tokens.
func NewBuffer(size int) *Buffer {
	return &Buffer{size: size, data: make([]string, size)}
}

// Size returns the buffer capacity.
func (b *Buffer) Size() int { return b.size }

// Push overwrites the slot under the cursor and advances it.
func (b *Buffer) Push(token string) {
	b.data[b.pos] = token
	b.pos++
	if b.pos == b.size {
		b.pos = 0
	}
}

// Hash returns a stable hash of the last k non-empty tokens, oldest first.
// While the buffer is warming up, Hash(k) for a large k equals Hash(j) for
// the number of tokens actually present.
//
// k must satisfy 1 <= k < Size(); anything else panics.
func (b *Buffer) Hash(k int) uint64 {
	b.checkRange(k)

	d := xxhash.New()
	for _, tok := range b.Subset(k) {
		_, _ = d.WriteString(tok)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Subset returns the trailing k logical slots with empty slots removed.
func (b *Buffer) Subset(k int) []string {
	start := b.pos - k
	var window []string
	switch {
	case start >= 0:
		window = b.data[start:b.pos]
	default:
		window = append(append([]string(nil), b.data[b.size+start:]...), b.data[:b.pos]...)
	}

	out := make([]string, 0, len(window))
	for _, tok := range window {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// String renders the trailing k tokens and their hash for debug traces.
func (b *Buffer) String(k int) string {
	return fmt.Sprintf("||%s||@%d", strings.Join(b.Subset(k), " "), b.Hash(k))
}

func (b *Buffer) checkRange(k int) {
	if k < 1 {
		panic(fmt.Sprintf("prose: buffer hash length %d out of range: must hash at least one item", k))
	}
	if k >= b.size {
		panic(fmt.Sprintf("prose: buffer hash length %d out of range: buffer size is %d", k, b.size))
	}
}
