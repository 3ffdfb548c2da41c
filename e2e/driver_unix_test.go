//go:build e2e && unix

package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/creack/pty"
)

const scrollback = 1 << 20 // bytes of output kept for assertions

var binPath = "searchy_e2e"

const (
	KeyEnter = "\r"
	KeyCtrlC = "\x03"
	KeyTab   = "\t"
	KeyEsc   = "\x1b"
	KeyRight = "l"
	KeyQuit  = "q"
)

// plain drops escape sequences and carriage returns from terminal output
func plain(s string) string {
	return strings.ReplaceAll(ansi.Strip(s), "\r", "")
}

// screenLog keeps the most recent output of the app under test
type screenLog struct {
	mu   sync.Mutex
	data []byte
}

func (l *screenLog) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.data = append(l.data, p...)
	if over := len(l.data) - scrollback; over > 0 {
		l.data = append(l.data[:0], l.data[over:]...)
	}
	return len(p), nil
}

func (l *screenLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return string(l.data)
}

// TUITestFramework drives searchy inside a pseudo terminal
type TUITestFramework struct {
	t      *testing.T
	pty    *os.File
	cmd    *exec.Cmd
	home   string
	screen screenLog
}

func NewTUITest(t *testing.T) *TUITestFramework {
	return &TUITestFramework{t: t}
}

// StartApp launches searchy against the offline memory backend in a 120x40
// terminal. HOME and the config dir point at a temporary directory.
func (tf *TUITestFramework) StartApp(args ...string) error {
	home, err := os.MkdirTemp("", "searchy-e2e-*")
	if err != nil {
		return fmt.Errorf("failed to create home: %w", err)
	}
	tf.home = home

	argv := append([]string{
		"--backend", "memory",
		"--log-file", filepath.Join(home, "searchy.log"),
		"--env", filepath.Join(home, ".env"),
	}, args...)
	tf.cmd = exec.Command(binPath, argv...)
	tf.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"SEARCHY_SEARCH_DEBOUNCE=100ms",
	)

	f, err := pty.StartWithSize(tf.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return fmt.Errorf("failed to start searchy: %w", err)
	}
	tf.pty = f
	go func() { _, _ = io.Copy(&tf.screen, f) }()
	return nil
}

// SendKeys writes raw input to the terminal
func (tf *TUITestFramework) SendKeys(keys string) error {
	tf.t.Helper()
	_, err := tf.pty.Write([]byte(keys))
	return err
}

func (tf *TUITestFramework) SendCtrlC() error { return tf.SendKeys(KeyCtrlC) }

// Type sends text to the query input
func (tf *TUITestFramework) Type(text string) error { return tf.SendKeys(text) }

// FocusResults moves focus from the input to the grid
func (tf *TUITestFramework) FocusResults() error { return tf.SendKeys(KeyTab) }

func (tf *TUITestFramework) Right() error { return tf.SendKeys(KeyRight) }
func (tf *TUITestFramework) Back() error  { return tf.SendKeys(KeyEsc) }
func (tf *TUITestFramework) Enter() error { return tf.SendKeys(KeyEnter) }
func (tf *TUITestFramework) Quit() error  { return tf.SendKeys(KeyQuit) }

// Ready waits for the first frame of the search screen
func (tf *TUITestFramework) Ready() bool {
	tf.t.Helper()
	return tf.OutputContainsPlain("Type to search", 5*time.Second)
}

// SeePlain waits up to three seconds for text in the stripped output
func (tf *TUITestFramework) SeePlain(text string) bool {
	tf.t.Helper()
	return tf.OutputContainsPlain(text, 3*time.Second)
}

// WaitForStatusMessage waits for a status line fragment
func (tf *TUITestFramework) WaitForStatusMessage(message string, timeout time.Duration) bool {
	return tf.OutputContainsPlain(message, timeout)
}

func (tf *TUITestFramework) OutputContainsPlain(text string, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitFor(func(s string) bool { return strings.Contains(plain(s), text) }, timeout)
}

// WaitFor polls the raw output until pred holds or timeout passes
func (tf *TUITestFramework) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	tf.t.Helper()
	return tf.WaitForE(pred, timeout, "") == nil
}

// WaitForE is WaitFor with an error carrying failMsg and the output tail
func (tf *TUITestFramework) WaitForE(pred func(string) bool, timeout time.Duration, failMsg string) error {
	tf.t.Helper()
	deadline := time.Now().Add(timeout)
	for !pred(tf.Snapshot()) {
		if time.Now().After(deadline) {
			return fmt.Errorf("%s\n--- tail ---\n%s", failMsg, tail(tf.SnapshotPlain(), 4096))
		}
		time.Sleep(25 * time.Millisecond)
	}
	return nil
}

// Snapshot returns everything captured so far, escape sequences included
func (tf *TUITestFramework) Snapshot() string {
	return tf.screen.String()
}

func (tf *TUITestFramework) SnapshotPlain() string {
	return plain(tf.Snapshot())
}

// DumpTailOnFail writes the last n bytes of stripped output under t's temp dir
func (tf *TUITestFramework) DumpTailOnFail(t *testing.T, name string, n int) {
	t.Helper()
	p := filepath.Join(t.TempDir(), name+".txt")
	_ = os.WriteFile(p, []byte(tail(tf.SnapshotPlain(), n)), 0644)
	t.Logf("Saved tail to %s", p)
}

// Cleanup hangs up the terminal, kills the app and removes its home
func (tf *TUITestFramework) Cleanup() {
	if tf.pty != nil {
		_ = tf.pty.Close()
		tf.pty = nil
	}
	if tf.cmd != nil && tf.cmd.Process != nil {
		_ = tf.cmd.Process.Kill()
		_, _ = tf.cmd.Process.Wait()
		tf.cmd = nil
	}
	if tf.home != "" {
		_ = os.RemoveAll(tf.home)
		tf.home = ""
	}
}

func tail(s string, n int) string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
