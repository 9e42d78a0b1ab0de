package platform

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/logging"
)

// runFunc executes a command and returns its stdout and stderr.
type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)

// ADBService reads Android devices through the adb command line tool.
type ADBService struct {
	adbPath string
	root    string
	timeout time.Duration
	run     runFunc

	mu       sync.Mutex
	sessions map[string]bool
}

func NewADBService(adbPath, root string, timeout time.Duration) *ADBService {
	if adbPath == "" {
		adbPath = "adb"
	}
	if root == "" {
		root = "/storage/emulated/0"
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &ADBService{
		adbPath:  adbPath,
		root:     cleanRoot(root),
		timeout:  timeout,
		run:      execRun,
		sessions: make(map[string]bool),
	}
}

func execRun(ctx context.Context, name string, args ...string) (string, string, error) {
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	err := cmd.Run()
	return stdoutBuf.String(), stderrBuf.String(), err
}

// adb runs one adb invocation under the per-call timeout.
func (s *ADBService) adb(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logging.Debug("adb", logging.Any("args", args))
	stdout, stderr, err := s.run(ctx, s.adbPath, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("adb %s: %w", strings.Join(args, " "), ctxErr)
		}
		return "", fmt.Errorf("adb %s: %w, stderr: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr))
	}
	return stdout, nil
}

func (s *ADBService) ListDevices(ctx context.Context) ([]device.Handle, error) {
	out, err := s.adb(ctx, "devices", "-l")
	if err != nil {
		return nil, err
	}
	return parseDevices(out), nil
}

// parseDevices reads `adb devices -l` output, keeping only devices in the
// "device" state (authorized and online).
func parseDevices(out string) []device.Handle {
	var handles []device.Handle
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] != "device" {
			continue
		}
		serial := fields[0]
		name := serial
		for _, f := range fields[2:] {
			if model, ok := strings.CutPrefix(f, "model:"); ok {
				name = strings.ReplaceAll(model, "_", " ")
			}
		}
		handles = append(handles, device.Handle{
			ID:      serial,
			Name:    name,
			Path:    serial,
			Backend: device.BackendADB,
		})
	}
	return handles
}

func (s *ADBService) Connect(ctx context.Context, h device.Handle) error {
	out, err := s.adb(ctx, "-s", h.Path, "get-state")
	if err != nil {
		return err
	}
	if state := strings.TrimSpace(out); state != "device" {
		return fmt.Errorf("device %s is %q, not ready", h.ID, state)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[h.ID] = true
	return nil
}

func (s *ADBService) Disconnect(ctx context.Context, h device.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sessions[h.ID] {
		return fmt.Errorf("device %s: %w", h.ID, errNotConnected)
	}
	delete(s.sessions, h.ID)
	return nil
}

func (s *ADBService) GetFullContents(ctx context.Context, h device.Handle) (*device.Folder, error) {
	s.mu.Lock()
	connected := s.sessions[h.ID]
	s.mu.Unlock()
	if !connected {
		return nil, fmt.Errorf("device %s: %w", h.ID, errNotConnected)
	}

	dirs, err := s.adb(ctx, "-s", h.Path, "shell", "find", shellQuote(s.root), "-type", "d")
	if err != nil {
		return nil, err
	}
	files, err := s.adb(ctx, "-s", h.Path, "shell", "find", shellQuote(s.root), "-type", "f")
	if err != nil {
		return nil, err
	}

	name := h.Name
	if name == "" {
		name = h.ID
	}
	return assembleTree(s.root, name, splitLines(dirs), splitLines(files))
}

// assembleTree builds a folder tree from absolute device paths under root.
// Children appear in the order the paths were listed, directories first.
func assembleTree(root, rootName string, dirs, files []string) (*device.Folder, error) {
	top := &device.Folder{Name: rootName}
	folders := map[string]*device.Folder{root: top}

	var ensure func(p string) (*device.Folder, error)
	ensure = func(p string) (*device.Folder, error) {
		if f, ok := folders[p]; ok {
			return f, nil
		}
		if !isUnder(root, p) {
			return nil, fmt.Errorf("path %s is outside %s", p, root)
		}
		parent, err := ensure(path.Dir(p))
		if err != nil {
			return nil, err
		}
		f := &device.Folder{Name: path.Base(p)}
		parent.Add(f)
		folders[p] = f
		return f, nil
	}

	for _, d := range dirs {
		if _, err := ensure(path.Clean(d)); err != nil {
			return nil, err
		}
	}
	for _, file := range files {
		file = path.Clean(file)
		if !isUnder(root, file) {
			return nil, fmt.Errorf("path %s is outside %s", file, root)
		}
		parent, err := ensure(path.Dir(file))
		if err != nil {
			return nil, err
		}
		parent.Add(&device.File{Name: path.Base(file)})
	}
	return top, nil
}

func isUnder(root, p string) bool {
	if root == "/" {
		return strings.HasPrefix(p, "/") && p != "/"
	}
	return strings.HasPrefix(p, root+"/")
}

func cleanRoot(p string) string {
	return path.Clean("/" + strings.TrimSpace(p))
}

func splitLines(out string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// shellQuote quotes s for the device shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
