package platform

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/tree"
)

const devicesOutput = `List of devices attached
ZY2234ABCD             device usb:1-1 product:victara_reteu model:XT1068 device:victara transport_id:3
R52N90XYZ              unauthorized usb:1-2 transport_id:4
emulator-5554          device product:sdk_gphone64 model:sdk_gphone64_x86_64 device:emu64x transport_id:1

`

func TestParseDevices(t *testing.T) {
	handles := parseDevices(devicesOutput)
	if len(handles) != 2 {
		t.Fatalf("got %d devices, want 2: %v", len(handles), handles)
	}
	if handles[0].ID != "ZY2234ABCD" || handles[0].Name != "XT1068" {
		t.Errorf("first device = %+v", handles[0])
	}
	if handles[1].Name != "sdk gphone64 x86 64" {
		t.Errorf("model underscores not replaced: %q", handles[1].Name)
	}
	for _, h := range handles {
		if h.Backend != device.BackendADB || h.Path != h.ID {
			t.Errorf("handle %+v missing backend or path", h)
		}
	}

	if got := parseDevices("List of devices attached\n\n"); len(got) != 0 {
		t.Errorf("empty list parsed as %v", got)
	}
}

func TestAssembleTree(t *testing.T) {
	root := "/storage/emulated/0"
	dirs := []string{
		"/storage/emulated/0",
		"/storage/emulated/0/DCIM",
		"/storage/emulated/0/DCIM/Camera",
		"/storage/emulated/0/Download",
	}
	files := []string{
		"/storage/emulated/0/DCIM/Camera/img1.jpg",
		"/storage/emulated/0/notes.txt",
		"/storage/emulated/0/WhatsApp/Media/a.jpg",
	}

	folder, err := assembleTree(root, "XT1068", dirs, files)
	if err != nil {
		t.Fatalf("assembleTree: %v", err)
	}

	var buf strings.Builder
	tree.Render(&buf, tree.Build(folder))
	want := strings.Join([]string{
		`\XT1068`,
		`├── \DCIM`,
		`│   └── \Camera`,
		`│       └── img1.jpg`,
		`├── \Download`,
		`├── notes.txt`,
		`└── \WhatsApp`,
		`    └── \Media`,
		`        └── a.jpg`,
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("tree =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestAssembleTreeRejectsOutsidePaths(t *testing.T) {
	_, err := assembleTree("/sdcard", "phone", nil, []string{"/data/secret.db"})
	if err == nil {
		t.Error("expected error for path outside root")
	}
}

// scripted answers adb invocations by their joined arguments.
type scripted struct {
	answers map[string]string
	fail    map[string]error
	calls   []string
}

func (s *scripted) run(ctx context.Context, name string, args ...string) (string, string, error) {
	key := strings.Join(args, " ")
	s.calls = append(s.calls, key)
	if err := s.fail[key]; err != nil {
		return "", "find: permission denied", err
	}
	return s.answers[key], "", nil
}

func newScriptedADB(s *scripted) *ADBService {
	svc := NewADBService("adb", "/sdcard/", time.Second)
	svc.run = s.run
	return svc
}

func TestADBServiceRead(t *testing.T) {
	s := &scripted{answers: map[string]string{
		"devices -l":              devicesOutput,
		"-s ZY2234ABCD get-state": "device\n",
		"-s ZY2234ABCD shell find '/sdcard' -type d": "/sdcard\n/sdcard/DCIM\n",
		"-s ZY2234ABCD shell find '/sdcard' -type f": "/sdcard/DCIM/a.jpg\r\n",
	}}
	svc := newScriptedADB(s)
	ctx := context.Background()

	handles, err := svc.ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	root, err := device.Read(ctx, svc, handles[0])
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	node := tree.Build(root)
	if got := tree.Find(node, "DCIM", "a.jpg"); got == nil {
		t.Errorf("a.jpg missing from %+v", node)
	}
	if node.Label != `\XT1068` {
		t.Errorf("root label = %q", node.Label)
	}
}

func TestADBServiceNotReady(t *testing.T) {
	s := &scripted{answers: map[string]string{"-s X get-state": "offline\n"}}
	svc := newScriptedADB(s)

	err := svc.Connect(context.Background(), device.Handle{ID: "X", Path: "X"})
	if err == nil || !strings.Contains(err.Error(), "offline") {
		t.Errorf("err = %v, want offline error", err)
	}
}

func TestADBServiceFindFailure(t *testing.T) {
	h := device.Handle{ID: "X", Path: "X"}
	s := &scripted{
		answers: map[string]string{"-s X get-state": "device"},
		fail:    map[string]error{"-s X shell find '/sdcard' -type d": errors.New("exit status 1")},
	}
	svc := newScriptedADB(s)

	_, err := device.Read(context.Background(), svc, h)
	var readErr *device.ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("err = %v, want ReadError", err)
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("stderr not included: %v", err)
	}
}

func TestADBServiceRequiresSession(t *testing.T) {
	svc := newScriptedADB(&scripted{})
	h := device.Handle{ID: "X", Path: "X"}
	if _, err := svc.GetFullContents(context.Background(), h); !errors.Is(err, errNotConnected) {
		t.Errorf("GetFullContents err = %v", err)
	}
	if err := svc.Disconnect(context.Background(), h); !errors.Is(err, errNotConnected) {
		t.Errorf("Disconnect err = %v", err)
	}
}

func TestShellQuote(t *testing.T) {
	if got := shellQuote("/sdcard/it's here"); got != `'/sdcard/it'\''s here'` {
		t.Errorf("shellQuote = %s", got)
	}
}
