package prose

import (
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
)

// hashOf is the context hash of tokens: xxhash over each token followed by
// a zero byte, oldest first.
func hashOf(tokens ...string) uint64 {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok)
		b.WriteByte(0)
	}
	return xxhash.Sum64String(b.String())
}

func emptyHash() uint64 {
	return xxhash.Sum64String("")
}

func mustPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", want)
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, want) {
			t.Errorf("panic = %v, want it to contain %q", r, want)
		}
	}()
	fn()
}

func TestBuffer_HashTrailingWindow(t *testing.T) {
	b := NewBuffer(3)
	b.Push("a")
	b.Push("b")
	b.Push("c")

	if got, want := b.Hash(1), hashOf("c"); got != want {
		t.Errorf("Hash(1) = %d, want hash of [c] %d", got, want)
	}
	before := b.Hash(2)
	if want := hashOf("b", "c"); before != want {
		t.Errorf("Hash(2) = %d, want hash of [b c] %d", before, want)
	}

	b.Push("d")

	after := b.Hash(2)
	if after != hashOf("c", "d") {
		t.Errorf("Hash(2) after push = %d, want hash of [c d]", after)
	}
	if after == before {
		t.Error("Hash(2) should change after pushing another token")
	}
	if b.Hash(1) == before {
		t.Error("Hash(1) should differ from the old Hash(2)")
	}
}

func TestBuffer_WarmUpCollision(t *testing.T) {
	b := NewBuffer(5)
	b.Push("x")
	b.Push("y")

	if got, want := b.Hash(1), hashOf("y"); got != want {
		t.Errorf("Hash(1) = %d, want hash of [y] %d", got, want)
	}
	for k := 2; k < 5; k++ {
		if got, want := b.Hash(k), hashOf("x", "y"); got != want {
			t.Errorf("Hash(%d) = %d, want hash of [x y] %d", k, got, want)
		}
	}
}

func TestBuffer_EmptyHashesAgree(t *testing.T) {
	b := NewBuffer(4)
	for k := 1; k < 4; k++ {
		if got := b.Hash(k); got != emptyHash() {
			t.Errorf("Hash(%d) on empty buffer = %d, want %d", k, got, emptyHash())
		}
	}
}

func TestBuffer_SubsetWrapsAround(t *testing.T) {
	b := NewBuffer(3)
	for _, tok := range []string{"a", "b", "c", "d", "e"} {
		b.Push(tok)
	}

	tests := []struct {
		k    int
		want []string
	}{
		{1, []string{"e"}},
		{2, []string{"d", "e"}},
		{3, []string{"c", "d", "e"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, b.Subset(tt.k)); diff != "" {
			t.Errorf("Subset(%d) mismatch (-want +got):\n%s", tt.k, diff)
		}
	}
}

func TestBuffer_SubsetAtCursorZero(t *testing.T) {
	b := NewBuffer(3)
	b.Push("a")
	b.Push("b")
	b.Push("c") // cursor wraps to 0

	if diff := cmp.Diff([]string{"b", "c"}, b.Subset(2)); diff != "" {
		t.Errorf("Subset(2) mismatch (-want +got):\n%s", diff)
	}
}

func TestBuffer_HashIsOrderSensitive(t *testing.T) {
	if hashOf("a", "b") == hashOf("b", "a") {
		t.Error("hash of [a b] should differ from hash of [b a]")
	}
	if hashOf("ab", "c") == hashOf("a", "bc") {
		t.Error("token boundaries should affect the hash")
	}
}

func TestBuffer_HashRange(t *testing.T) {
	b := NewBuffer(3)
	mustPanic(t, "at least one", func() { b.Hash(0) })
	mustPanic(t, "buffer size is 3", func() { b.Hash(3) })
	mustPanic(t, "out of range", func() { b.Hash(-1) })
}

func TestBuffer_String(t *testing.T) {
	b := NewBuffer(4)
	b.Push("hello")
	b.Push("there")

	got := b.String(2)
	if !strings.HasPrefix(got, "||hello there||@") {
		t.Errorf("String(2) = %q, want prefix %q", got, "||hello there||@")
	}
}
