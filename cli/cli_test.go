package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/toolloop/config"
	"github.com/richinex/toolloop/storage"
)

// completionServer replays canned OpenAI chat completions in order and then
// keeps answering with the last one.
type completionServer struct {
	mu       sync.Mutex
	replies  []string
	requests []map[string]any
}

func (s *completionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.requests = append(s.requests, body)
	n := len(s.requests)
	reply := s.replies[len(s.replies)-1]
	if n <= len(s.replies) {
		reply = s.replies[n-1]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(reply))
}

func toolCallReply(id, name, args string) string {
	quoted, _ := json.Marshal(args)
	return fmt.Sprintf(`{
		"id": "chatcmpl-1", "object": "chat.completion", "model": "test-model",
		"choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
			"role": "assistant", "content": "",
			"tool_calls": [{"id": %q, "type": "function", "function": {"name": %q, "arguments": %s}}]
		}}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
	}`, id, name, quoted)
}

func textReply(text string) string {
	quoted, _ := json.Marshal(text)
	return fmt.Sprintf(`{
		"id": "chatcmpl-2", "object": "chat.completion", "model": "test-model",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %s}}],
		"usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
	}`, quoted)
}

func testSettings(baseURL string) config.Settings {
	s := config.Defaults()
	s.LLM.Provider = "openai"
	s.LLM.Model = "test-model"
	s.LLM.APIKey = "sk-test"
	s.LLM.BaseURL = baseURL
	return s
}

func newTestRuntime(t *testing.T, settings config.Settings, workDir string, out *bytes.Buffer) *Runtime {
	t.Helper()
	rt, err := NewRuntime(settings, Options{WorkDir: workDir, Out: out, NoColor: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestRunBatchWritesFile(t *testing.T) {
	srv := &completionServer{replies: []string{
		toolCallReply("call_1", "write_file", `{"path":"hello.txt","content":"hi"}`),
		textReply("Created hello.txt"),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	dir := t.TempDir()
	var out bytes.Buffer
	rt := newTestRuntime(t, testSettings(ts.URL), dir, &out)

	require.NoError(t, rt.RunBatch(context.Background(), "create hello.txt"))

	data, err := os.ReadFile(filepath.Join(dir, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	assert.Contains(t, out.String(), "$ write_file")
	assert.Contains(t, out.String(), `"path": "hello.txt"`)
	assert.Contains(t, out.String(), "Created hello.txt")
	assert.Len(t, srv.requests, 2)
}

func TestRunBatchBudgetNote(t *testing.T) {
	srv := &completionServer{replies: []string{
		toolCallReply("call_1", "bash", `{"command":"true"}`),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	settings := testSettings(ts.URL)
	settings.Agent.StepBudget = 2
	var out bytes.Buffer
	rt := newTestRuntime(t, settings, t.TempDir(), &out)

	require.NoError(t, rt.RunBatch(context.Background(), "loop forever"))
	assert.Len(t, srv.requests, 2)
	assert.Contains(t, out.String(), "(stopped after 2 steps)")
}

func TestRunBatchTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	var out bytes.Buffer
	rt := newTestRuntime(t, testSettings(ts.URL), t.TempDir(), &out)

	assert.Error(t, rt.RunBatch(context.Background(), "anything"))
}

func TestRunInteractiveSharesHistoryAndRecords(t *testing.T) {
	srv := &completionServer{replies: []string{
		textReply("first answer"),
		textReply("second answer"),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	settings := testSettings(ts.URL)
	settings.Transcript.Path = filepath.Join(t.TempDir(), "transcripts.db")
	var out bytes.Buffer
	rt := newTestRuntime(t, settings, t.TempDir(), &out)
	require.NotEmpty(t, rt.SessionID)

	in := strings.NewReader("one\ntwo\nexit\nignored\n")
	require.NoError(t, rt.RunInteractive(context.Background(), in))

	assert.Contains(t, out.String(), "first answer")
	assert.Contains(t, out.String(), "second answer")
	require.Len(t, srv.requests, 2)

	// second request carries system + both utterances + first answer
	messages, ok := srv.requests[1]["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 4)

	records, err := rt.Store.Load(context.Background(), rt.SessionID)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestRunInteractiveContinuesAfterError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(textReply("recovered")))
	}))
	defer ts.Close()

	var out bytes.Buffer
	rt := newTestRuntime(t, testSettings(ts.URL), t.TempDir(), &out)

	require.NoError(t, rt.RunInteractive(context.Background(), strings.NewReader("one\ntwo\n")))
	assert.Contains(t, out.String(), "Error: ")
	assert.Contains(t, out.String(), "recovered")
}

func TestRunInteractiveStopsOnBlankLine(t *testing.T) {
	srv := &completionServer{replies: []string{textReply("unused")}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	var out bytes.Buffer
	rt := newTestRuntime(t, testSettings(ts.URL), t.TempDir(), &out)

	require.NoError(t, rt.RunInteractive(context.Background(), strings.NewReader("\nhello\n")))
	assert.Empty(t, srv.requests)
	assert.Contains(t, out.String(), ">> ")
}

func TestBuildCatalogTodos(t *testing.T) {
	settings := config.Defaults()

	catalog, err := BuildCatalog(settings, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"bash", "read_file", "write_file", "edit_file"}, catalog.Names())

	settings.Agent.EnableTodos = true
	catalog, err = BuildCatalog(settings, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, catalog.Names(), "TodoWrite")
}

func TestBuildCatalogTruncates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.txt"), []byte(strings.Repeat("x", 100)), 0o644))

	settings := config.Defaults()
	settings.Tools.MaxOutputChars = 10
	catalog, err := BuildCatalog(settings, dir)
	require.NoError(t, err)

	out := catalog.Dispatch(context.Background(), "read_file", map[string]any{"path": "big.txt"})
	assert.Equal(t, strings.Repeat("x", 10), out)
}

func TestListTools(t *testing.T) {
	catalog, err := BuildCatalog(config.Defaults(), t.TempDir())
	require.NoError(t, err)

	var out bytes.Buffer
	ListTools(&out, catalog, false)
	assert.Contains(t, out.String(), "  bash\n")
	assert.NotContains(t, out.String(), "Parameters:")

	out.Reset()
	ListTools(&out, catalog, true)
	assert.Contains(t, out.String(), "Tool: bash\n")
	assert.Contains(t, out.String(), "  - command (string): The shell command to execute [required]")
	assert.Contains(t, out.String(), "  - limit (integer): Max lines to read (default: all) [optional]")
}

func TestShowSession(t *testing.T) {
	store := storage.NewInMemoryStorage()
	ctx := context.Background()

	srv := &completionServer{replies: []string{
		toolCallReply("call_1", "bash", `{"command":"echo hi"}`),
		textReply("done"),
	}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	var out bytes.Buffer
	rt := newTestRuntime(t, testSettings(ts.URL), t.TempDir(), &out)
	rt.Store = store
	rt.SessionID = "s1"
	require.NoError(t, rt.RunBatch(ctx, "say hi"))

	var listing bytes.Buffer
	require.NoError(t, ListSessions(ctx, &listing, store))
	assert.Contains(t, listing.String(), "s1")
	assert.Contains(t, listing.String(), "4 messages")

	var shown bytes.Buffer
	require.NoError(t, ShowSession(ctx, &shown, store, "s1"))
	assert.Contains(t, shown.String(), ">> say hi")
	assert.Contains(t, shown.String(), "$ bash")
	assert.Contains(t, shown.String(), "  hi")
	assert.Contains(t, shown.String(), "done")
}

func TestShowSessionMissing(t *testing.T) {
	err := ShowSession(context.Background(), &bytes.Buffer{}, storage.NewInMemoryStorage(), "nope")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}
