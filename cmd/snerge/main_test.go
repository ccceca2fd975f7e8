package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/HendryAvila/snerge/internal/config"
)

const foxQuote = "The quick brown fox jumps over the lazy dog."

// writeConfig lays out a config file, a one-quote corpus and a data dir in
// a temp directory and returns the config path.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	csv := "id,quote\n1," + foxQuote + "\n"
	if err := os.WriteFile(filepath.Join(dir, "uno.csv"), []byte(csv), 0600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	yml := `order: 20
data_dir: ` + filepath.Join(dir, "data") + `
quote:
  min_length: 10
  max_attempts: 5
  say_count: 3
corpus:
  sources:
    - path: uno.csv
      label: Uno
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(yml), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SNERGE_DATA_DIR", "")

	// Flag values outlive a single Execute.
	_ = sayCmd.Flags().Set("count", "0")
	_ = sayCmd.Flags().Set("owo", "false")
	_ = importCmd.Flags().Set("label", "")
	_ = initCmd.Flags().Set("force", "false")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// execute is run for commands that must succeed.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("snerge %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestVersionCmd(t *testing.T) {
	got := execute(t, "version", "--config", writeConfig(t))
	if got != "snerge vdev\n" {
		t.Errorf("version = %q", got)
	}
}

func TestSayCmd(t *testing.T) {
	got := execute(t, "say", "--config", writeConfig(t))

	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d quotes, want 3:\n%s", len(lines), got)
	}
	for _, l := range lines {
		if l != foxQuote {
			t.Errorf("quote = %q, want %q", l, foxQuote)
		}
	}
}

func TestSayCmd_OwO(t *testing.T) {
	got := execute(t, "say", "--config", writeConfig(t), "--count", "1", "--owo")

	want := "The quick bwown fox jumps wuww the wazy dog.\n"
	if got != want {
		t.Errorf("say --owo = %q, want %q", got, want)
	}
}

func TestWhenceCmd(t *testing.T) {
	got := execute(t, "whence", "--config", writeConfig(t), "fox", "cat")

	var found map[string][]struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(got), &found); err != nil {
		t.Fatalf("whence output is not JSON: %v\n%s", err, got)
	}
	if len(found["fox"]) != 1 || found["fox"][0].ID != "Uno #1" || found["fox"][0].Text != foxQuote {
		t.Errorf("fox = %+v, want the Uno #1 quote", found["fox"])
	}
	if facts, ok := found["cat"]; !ok || len(facts) != 0 {
		t.Errorf("cat = %+v, want an empty list", facts)
	}
}

func TestDumpCmd(t *testing.T) {
	got := execute(t, "dump", "--config", writeConfig(t))

	var dump map[string][]map[string]string
	if err := json.Unmarshal([]byte(got), &dump); err != nil {
		t.Fatalf("dump output is not JSON: %v", err)
	}
	for _, tok := range []string{"quick", "lazy", "[!PERIOD]"} {
		if len(dump[tok]) != 1 {
			t.Errorf("dump[%q] = %v, want one quote", tok, dump[tok])
		}
	}
}

func TestImportCmd(t *testing.T) {
	cfgPath := writeConfig(t)
	csv := filepath.Join(filepath.Dir(cfgPath), "dos.csv")
	if err := os.WriteFile(csv, []byte("id,quote\n1,Tea is fine.\n2,Coffee is not.\n"), 0600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	got := execute(t, "import", "--config", cfgPath, csv)
	if want := csv + ": 2 added, 0 skipped\n"; got != want {
		t.Errorf("first import = %q, want %q", got, want)
	}

	got = execute(t, "import", "--config", cfgPath, csv)
	if want := csv + ": 0 added, 2 skipped\n"; got != want {
		t.Errorf("second import = %q, want %q", got, want)
	}

	// Imported quotes are restored into later runs.
	got = execute(t, "whence", "--config", cfgPath, "tea")
	if !strings.Contains(got, `"id": "dos #1"`) {
		t.Errorf("whence tea = %s, want dos #1", got)
	}
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	if got, want := execute(t, "init", "--config", path), "wrote "+path+"\n"; got != want {
		t.Errorf("init = %q, want %q", got, want)
	}

	loaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(config.DefaultConfig(), loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("written config mismatch (-want +got):\n%s", diff)
	}

	if _, err := run(t, "init", "--config", path); err == nil {
		t.Error("init should refuse to overwrite an existing file")
	}
	if _, err := run(t, "init", "--config", path, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}
