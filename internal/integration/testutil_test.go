package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/ssh"

	"pkt.systems/agentnexus"
	"pkt.systems/agentnexus/schema"
)

type testStack struct {
	httpAddr  string
	sshAddr   string
	exportDir string
}

func newTestStack(t *testing.T, terminal schema.TerminalConfig) *testStack {
	t.Helper()
	httpLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	sshLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	ts := &testStack{
		httpAddr:  httpLn.Addr().String(),
		sshAddr:   sshLn.Addr().String(),
		exportDir: filepath.Join(dir, "exports"),
	}
	if terminal.ConnectDelay == 0 {
		terminal.ConnectDelay = 50 * time.Millisecond
	}
	if terminal.ExportDelay == 0 {
		terminal.ExportDelay = 50 * time.Millisecond
	}
	if terminal.SpinnerInterval == 0 {
		terminal.SpinnerInterval = 10 * time.Millisecond
	}
	srv, err := agentnexus.New(agentnexus.ServerConfig{
		Terminal:  terminal,
		SSH:       agentnexus.SSHConfig{Addr: ts.sshAddr, HostKeyPath: filepath.Join(dir, "host_key")},
		ExportDir: ts.exportDir,
	}, agentnexus.ServerDeps{HTTPListener: httpLn, SSHListener: sshLn}, agentnexus.WithHTTP(), agentnexus.WithSSH())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.Start(ctx); err != nil {
		cancel()
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = srv.Stop(stopCtx)
		cancel()
	})
	waitForHTTP(t, "http://"+ts.httpAddr+"/api/status")
	return ts
}

func (ts *testStack) url(path string) string {
	return "http://" + ts.httpAddr + path
}

func waitForHTTP(t *testing.T, url string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("http not ready: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func readJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type sshTerminal struct {
	session *ssh.Session
	stdin   io.WriteCloser
	output  *lockedBuffer
}

func openSSHTerminal(t *testing.T, addr string) *sshTerminal {
	t.Helper()
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            "operator",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	if err != nil {
		t.Fatalf("ssh dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	sess, err := client.NewSession()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	if err := sess.RequestPty("xterm-256color", 40, 120, ssh.TerminalModes{}); err != nil {
		t.Fatal(err)
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	output := &lockedBuffer{}
	sess.Stdout = output
	if err := sess.Shell(); err != nil {
		t.Fatal(err)
	}
	return &sshTerminal{session: sess, stdin: stdin, output: output}
}

func (s *sshTerminal) send(t *testing.T, input string) {
	t.Helper()
	if _, err := s.stdin.Write([]byte(input)); err != nil {
		t.Fatalf("ssh input: %v", err)
	}
}

type webTerminal struct {
	conn   *websocket.Conn
	output *lockedBuffer
	closed chan struct{}
}

func openWebTerminal(t *testing.T, addr string) *webTerminal {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	w := &webTerminal{conn: conn, output: &lockedBuffer{}, closed: make(chan struct{})}
	go func() {
		defer close(w.closed)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			_, _ = w.output.Write(data)
		}
	}()
	return w
}

func (w *webTerminal) send(t *testing.T, input string) {
	t.Helper()
	if err := w.conn.WriteMessage(websocket.BinaryMessage, []byte(input)); err != nil {
		t.Fatalf("websocket input: %v", err)
	}
}

func expectOutput(t *testing.T, buffer *lockedBuffer, substr string, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(buffer.String(), substr) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %q in output: %q", substr, buffer.String())
}

func requireLong(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

func containsAll(value string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(value, term) {
			return false
		}
	}
	return true
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

func (l *lockedBuffer) Reset() {
	l.mu.Lock()
	l.buf.Reset()
	l.mu.Unlock()
}
