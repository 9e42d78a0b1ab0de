package device_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gajzzs/devtree/internal/device"
	"github.com/gajzzs/devtree/internal/device/devicetest"
)

var phone = device.Handle{ID: "ZY22", Name: "XT1068", Path: "ZY22", Backend: device.BackendADB}

func TestReadReleasesSession(t *testing.T) {
	fake := devicetest.New(phone)
	fake.Trees[phone.ID] = device.NewFolder("Internal storage", device.NewFile("a.jpg"))

	root, err := device.Read(context.Background(), fake, phone)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if root.Name != "Internal storage" || len(root.Children) != 1 {
		t.Errorf("unexpected root %+v", root)
	}
	if fake.Connected(phone.ID) {
		t.Error("session still open after Read")
	}

	want := []string{"connect:ZY22", "read:ZY22", "disconnect:ZY22"}
	if got := fake.Calls(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestReadErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name           string
		setup          func(*devicetest.Fake)
		wantConnErr    bool
		wantReadErr    bool
		wantDisconnect bool
	}{
		{
			name:        "connect fails",
			setup:       func(f *devicetest.Fake) { f.ConnectErr = boom },
			wantConnErr: true,
		},
		{
			name:           "read fails",
			setup:          func(f *devicetest.Fake) { f.ReadErr = boom },
			wantReadErr:    true,
			wantDisconnect: true,
		},
		{
			name:           "disconnect fails",
			setup:          func(f *devicetest.Fake) { f.DisconnectErr = boom },
			wantConnErr:    true,
			wantDisconnect: true,
		},
		{
			name:           "nil root",
			setup:          func(f *devicetest.Fake) { delete(f.Trees, phone.ID) },
			wantReadErr:    true,
			wantDisconnect: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := devicetest.New(phone)
			fake.Trees[phone.ID] = device.NewFolder("root")
			tt.setup(fake)

			root, err := device.Read(context.Background(), fake, phone)
			if err == nil {
				t.Fatal("expected error")
			}
			if root != nil {
				t.Errorf("root = %+v, want nil", root)
			}
			if !errors.Is(err, boom) && tt.name != "nil root" {
				t.Errorf("error %v does not wrap cause", err)
			}

			var connErr *device.ConnectionError
			if got := errors.As(err, &connErr); got != tt.wantConnErr {
				t.Errorf("ConnectionError = %v, want %v (%v)", got, tt.wantConnErr, err)
			}
			var readErr *device.ReadError
			if got := errors.As(err, &readErr); got != tt.wantReadErr {
				t.Errorf("ReadError = %v, want %v (%v)", got, tt.wantReadErr, err)
			}

			disconnected := false
			for _, c := range fake.Calls() {
				if c == "disconnect:"+phone.ID {
					disconnected = true
				}
			}
			if disconnected != tt.wantDisconnect {
				t.Errorf("disconnect called = %v, want %v", disconnected, tt.wantDisconnect)
			}
			if fake.Connected(phone.ID) {
				t.Error("session left open")
			}
		})
	}
}

func TestReadPlaceholder(t *testing.T) {
	fake := devicetest.New()
	if _, err := device.Read(context.Background(), fake, device.Handle{}); !errors.Is(err, device.ErrNoDevice) {
		t.Errorf("err = %v, want ErrNoDevice", err)
	}
	if len(fake.Calls()) != 0 {
		t.Errorf("placeholder touched the service: %v", fake.Calls())
	}
}

func TestReadCancelledStillDisconnects(t *testing.T) {
	fake := devicetest.New(phone)
	fake.Gate = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := device.Read(ctx, fake, phone); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if fake.Connected(phone.ID) {
		t.Error("session left open after cancellation")
	}
}

func TestListWrapsError(t *testing.T) {
	fake := devicetest.New()
	fake.ListErr = errors.New("adb not running")

	_, err := device.List(context.Background(), fake)
	var connErr *device.ConnectionError
	if !errors.As(err, &connErr) || connErr.Op != "list" {
		t.Fatalf("err = %v, want list ConnectionError", err)
	}
	if !strings.Contains(err.Error(), "adb not running") {
		t.Errorf("message %q lost cause", err.Error())
	}
}

func TestHandleString(t *testing.T) {
	tests := []struct {
		h    device.Handle
		want string
	}{
		{device.Handle{}, "(no device selected)"},
		{device.Handle{ID: "abc"}, "abc"},
		{phone, "XT1068 (ZY22)"},
	}
	for _, tt := range tests {
		if got := tt.h.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
