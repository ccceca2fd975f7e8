package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/HendryAvila/snerge/internal/prose"
)

func TestWatcher_ReimportsChangedFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, err := prose.New(6)
	if err != nil {
		t.Fatalf("prose.New: %v", err)
	}
	path := filepath.Join(t.TempDir(), "quotes.csv")
	if err := os.WriteFile(path, []byte("id,quote\n1,first line here.\n"), 0600); err != nil {
		t.Fatal(err)
	}
	src := Source{Path: path, Label: "Uno"}

	l := NewLoader(m, nil)
	if _, err := l.Load(context.Background(), src); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	w, err := NewWatcher(l, src)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	w.debounce = 20 * time.Millisecond

	reloaded := make(chan Import, 4)
	w.reloaded = func(_ string, imp Import) {
		select {
		case reloaded <- imp:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("id,quote\n1,first line here.\n2,brand new wisdom.\n"), 0600); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for !m.Known("wisdom") {
		select {
		case imp := <-reloaded:
			if imp.Added > 1 {
				t.Errorf("re-import added %d facts, want at most 1", imp.Added)
			}
		case <-deadline:
			t.Fatal("watcher never trained the new quote")
		}
	}

	if got := m.Stats().Facts; got != 2 {
		t.Errorf("model facts = %d, want 2", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, err := prose.New(6)
	if err != nil {
		t.Fatalf("prose.New: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "quotes.csv")
	if err := os.WriteFile(path, []byte("id,quote\n"), 0600); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(NewLoader(m, nil), Source{Path: path, Label: "Uno"})
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	w.debounce = 20 * time.Millisecond

	reloaded := make(chan Import, 1)
	w.reloaded = func(_ string, imp Import) {
		select {
		case reloaded <- imp:
		default:
		}
	}

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("id,quote\n1,nope.\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case imp := <-reloaded:
		t.Errorf("unexpected re-import %+v", imp)
	case <-time.After(200 * time.Millisecond):
	}
	w.Stop()

	if m.Known("nope") {
		t.Error("an unwatched file was trained")
	}
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(NewLoader(nil, nil))
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	w.Stop()
}
