package server

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

// rpc sends one JSON-RPC request through the server and decodes the result
// into out.
func rpc(t *testing.T, e *Engine, method string, params any, out any) {
	t.Helper()
	s := newMCPServer(e)

	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp := s.HandleMessage(context.Background(), msg)
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error != nil {
		t.Fatalf("%s failed: %s", method, envelope.Error.Message)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func newWarmEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(newTestConfig(t), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	if err := e.Warm(context.Background()); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	return e
}

func toolNames(t *testing.T, e *Engine) []string {
	t.Helper()
	var result struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	rpc(t, e, "tools/list", map[string]any{}, &result)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	return names
}

func TestServer_RegistersTools(t *testing.T) {
	e := newWarmEngine(t)

	want := []string{
		"snerge_corpus_search",
		"snerge_dictionary",
		"snerge_learn",
		"snerge_predict",
		"snerge_quote",
		"snerge_stats",
		"snerge_whence",
	}
	if diff := cmp.Diff(want, toolNames(t, e)); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_NoSearchWithoutStore(t *testing.T) {
	e := newWarmEngine(t)
	_ = e.Store.Close()
	e.Store = nil

	for _, name := range toolNames(t, e) {
		if name == "snerge_corpus_search" {
			t.Error("snerge_corpus_search should not be registered without a store")
		}
	}
}

func TestServer_CallQuote(t *testing.T) {
	e := newWarmEngine(t)

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	rpc(t, e, "tools/call", map[string]any{
		"name":      "snerge_quote",
		"arguments": map[string]any{"prompt": "cats"},
	}, &result)

	if result.IsError {
		t.Fatalf("snerge_quote returned an error: %+v", result.Content)
	}
	if len(result.Content) != 1 || result.Content[0].Text == "" {
		t.Errorf("snerge_quote content = %+v, want one non-empty text", result.Content)
	}
}

func TestServer_ListsPromptAndResource(t *testing.T) {
	e := newWarmEngine(t)

	var prompts struct {
		Prompts []struct {
			Name string `json:"name"`
		} `json:"prompts"`
	}
	rpc(t, e, "prompts/list", map[string]any{}, &prompts)
	if len(prompts.Prompts) != 1 || prompts.Prompts[0].Name != "snerge-wisdom" {
		t.Errorf("prompts = %+v, want snerge-wisdom", prompts.Prompts)
	}

	var resources struct {
		Resources []struct {
			URI string `json:"uri"`
		} `json:"resources"`
	}
	rpc(t, e, "resources/list", map[string]any{}, &resources)
	if len(resources.Resources) != 1 || resources.Resources[0].URI != "snerge://dictionary" {
		t.Errorf("resources = %+v, want snerge://dictionary", resources.Resources)
	}
}

func TestNew_CleanupWaitsForWarmUp(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := newTestConfig(t)
	cfg.Corpus.Watch = true

	s, cleanup, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s == nil {
		t.Fatal("server should not be nil")
	}
	cleanup()
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Quote.MaxAttempts = 0

	_, cleanup, err := New(cfg, nil)
	if err == nil {
		t.Fatal("expected error for max_attempts 0")
	}
	cleanup()
}
