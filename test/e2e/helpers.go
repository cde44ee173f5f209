package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperengineering/showcase/internal/api"
	"github.com/hyperengineering/showcase/internal/catalog"
	"github.com/hyperengineering/showcase/internal/contact"
	"github.com/hyperengineering/showcase/internal/metrics"
	"github.com/hyperengineering/showcase/internal/store"
)

// testEnv is an in-process server wired the way the binary wires it:
// SQLite notification log, simulated delivery, metrics and the full router.
type testEnv struct {
	server  *httptest.Server
	store   *store.SQLiteStore
	forms   *contact.Registry
	metrics *metrics.Metrics
	dbPath  string
}

func setupTestEnv(t *testing.T, delay time.Duration) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "showcase.db")
	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}

	m := metrics.New()
	ctx, cancel := context.WithCancel(context.Background())
	forms := contact.NewRegistry(ctx,
		contact.SimulatedSubmitter{Delay: delay},
		contact.Notifiers{contact.LogNotifier{}, store.Sink(db), m.Notifier()},
		contact.WithObserver(m),
	)

	h := api.NewHandler(catalog.Default(), forms, db, m, catalog.PreviewCap, "e2e")
	srv := httptest.NewServer(api.NewRouter(h, m.Handler()))

	t.Cleanup(func() {
		srv.Close()
		forms.Shutdown()
		cancel()
		db.Close()
	})

	return &testEnv{server: srv, store: db, forms: forms, metrics: m, dbPath: dbPath}
}

func (e *testEnv) url(path string) string {
	return e.server.URL + path
}

// do sends a request with an optional JSON body and returns status and body.
func (e *testEnv) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.url(path), reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decodeJSON[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %T: %v\n%s", v, err, data)
	}
	return v
}

func validContact() map[string]string {
	return map[string]string{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"message": "We need a storefront for our bakery.",
	}
}

// eventually polls cond until it holds or the timeout elapses.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
