// Package artifact implements the reference filesystem artifact-host
// backend adapter: blobs (LoRA weights, model shards, build outputs) written
// as plain files under a root directory. It is the third of the three
// illustrative backends the placement core is designed to sit on top of.
package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"ringkeeper/pkg/placement"
)

// Host is a single filesystem-backed artifact node.
type Host struct {
	name string
	root string

	mu sync.Mutex
}

// NewHost creates a host rooted at dir. The directory is created on first
// write if it does not already exist.
func NewHost(name, dir string) *Host {
	return &Host{name: name, root: dir}
}

// Name returns the host's ring/router adapter id.
func (h *Host) Name() string { return h.name }

// sanitize replaces ":" with "_" for filesystem safety. The ring itself
// never sees the sanitized form — only this adapter does.
func sanitize(key string) string {
	return strings.ReplaceAll(key, ":", "_")
}

func (h *Host) path(key string) string {
	return filepath.Join(h.root, sanitize(key))
}

// Get implements placement.Store[[]byte]. A missing file is a clean miss,
// not an error.
func (h *Host) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(h.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Put implements placement.Store[[]byte]. Artifact hosts take no put
// options.
func (h *Host) Put(_ context.Context, key string, value []byte, _ placement.PutOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(h.root, 0o755); err != nil {
		return err
	}
	return os.WriteFile(h.path(key), value, 0o644)
}

// Fetch is the domain-facing convenience name for Get.
func (h *Host) Fetch(ctx context.Context, key string) ([]byte, bool, error) {
	return h.Get(ctx, key)
}
