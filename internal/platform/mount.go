package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gajzzs/devtree/internal/device"
)

// MountService reads devices that the host has mounted as a directory:
// MTP FUSE mounts and removable volumes.
type MountService struct {
	list func(ctx context.Context) ([]device.Handle, error)

	mu       sync.Mutex
	sessions map[string]bool
}

func NewMountService() *MountService {
	return newMountService(listVolumes)
}

func newMountService(list func(ctx context.Context) ([]device.Handle, error)) *MountService {
	return &MountService{
		list:     list,
		sessions: make(map[string]bool),
	}
}

func (s *MountService) ListDevices(ctx context.Context) ([]device.Handle, error) {
	return s.list(ctx)
}

func (s *MountService) Connect(ctx context.Context, h device.Handle) error {
	info, err := os.Stat(h.Path)
	if err != nil {
		return fmt.Errorf("mount point unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("mount point %s is not a directory", h.Path)
	}
	f, err := os.Open(h.Path)
	if err != nil {
		return fmt.Errorf("mount point unreadable: %w", err)
	}
	f.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[h.ID] = true
	return nil
}

func (s *MountService) Disconnect(ctx context.Context, h device.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sessions[h.ID] {
		return fmt.Errorf("device %s: %w", h.ID, errNotConnected)
	}
	delete(s.sessions, h.ID)
	return nil
}

func (s *MountService) GetFullContents(ctx context.Context, h device.Handle) (*device.Folder, error) {
	s.mu.Lock()
	connected := s.sessions[h.ID]
	s.mu.Unlock()
	if !connected {
		return nil, fmt.Errorf("device %s: %w", h.ID, errNotConnected)
	}

	name := h.Name
	if name == "" {
		name = filepath.Base(h.Path)
	}
	return readFolder(ctx, h.Path, name)
}

// readFolder walks dir depth first. Entries come back in os.ReadDir order
// (sorted by name); symlinks are reported as files and not followed.
func readFolder(ctx context.Context, dir, name string) (*device.Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	folder := &device.Folder{Name: name}
	for _, entry := range entries {
		if entry.IsDir() {
			child, err := readFolder(ctx, filepath.Join(dir, entry.Name()), entry.Name())
			if err != nil {
				return nil, err
			}
			folder.Add(child)
			continue
		}
		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}
		folder.Add(&device.File{Name: entry.Name(), Size: size})
	}
	return folder, nil
}
