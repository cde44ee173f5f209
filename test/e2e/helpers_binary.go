//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"
)

// showcaseServer manages a running Showcase server process.
type showcaseServer struct {
	cmd     *exec.Cmd
	dataDir string
	address string
	logFile string
	env     []string
}

// startShowcase launches the binary and waits for it to become healthy.
// The server is configured entirely via environment variables.
func startShowcase(t *testing.T) *showcaseServer {
	t.Helper()

	if showcaseBin == "" {
		t.Skip("showcase binary not available (set SHOWCASE_BIN or add to PATH)")
	}

	dataDir := t.TempDir()
	port := freePort(t)
	s := &showcaseServer{
		dataDir: dataDir,
		address: fmt.Sprintf("127.0.0.1:%d", port),
		logFile: fmt.Sprintf("%s/showcase.log", dataDir),
		env: append(os.Environ(),
			fmt.Sprintf("SHOWCASE_PORT=%d", port),
			"SHOWCASE_DB_PATH="+dataDir+"/showcase.db",
			"SHOWCASE_CONFIG_PATH="+dataDir+"/nonexistent.yaml", // skip YAML file
			"SHOWCASE_SUBMIT_DELAY=50ms",
			"SHOWCASE_SNAPSHOT_INTERVAL=1h",
			"SHOWCASE_SNAPSHOT_PATH="+dataDir+"/snapshot/notifications.db",
		),
	}
	s.start(t)
	return s
}

func (s *showcaseServer) start(t *testing.T) {
	t.Helper()

	lf, err := os.OpenFile(s.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}

	cmd := exec.Command(showcaseBin)
	cmd.Env = s.env
	cmd.Stdout = lf
	cmd.Stderr = lf
	if err := cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start showcase: %v", err)
	}
	s.cmd = cmd

	t.Cleanup(func() {
		s.stop()
		lf.Close()
	})

	if err := s.waitHealthy(10 * time.Second); err != nil {
		logs, _ := os.ReadFile(s.logFile)
		t.Fatalf("showcase not healthy: %v\nlogs:\n%s", err, logs)
	}
}

// stop sends SIGINT and waits for the process to exit.
func (s *showcaseServer) stop() error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	_ = s.cmd.Process.Signal(os.Interrupt)
	err := s.cmd.Wait()
	s.cmd = nil
	return err
}

// restartOnSameData stops the server and starts it again on the same
// database file and port.
func (s *showcaseServer) restartOnSameData(t *testing.T) {
	t.Helper()
	if err := s.stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	s.start(t)
}

func (s *showcaseServer) baseURL() string {
	return fmt.Sprintf("http://%s", s.address)
}

func (s *showcaseServer) waitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := s.baseURL() + "/api/v1/health"

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("timed out after %s", timeout)
}

// postJSON posts v and decodes the response into out when non-nil.
func (s *showcaseServer) postJSON(t *testing.T, path string, v, out any) int {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(s.baseURL()+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func (s *showcaseServer) getJSON(t *testing.T, path string, out any) int {
	t.Helper()

	resp, err := http.Get(s.baseURL() + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
