package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// CephBackend stores tiles as RADOS objects in a Ceph pool, wired per
// spec.md §6's ROK4_CEPH_CLUSTERNAME/USERNAME/CONFFILE environment
// variables.
//
// No Ceph client library (cgo librados bindings or otherwise) is wired
// here; adding one would mean a dependency with no other exercised use.
// Ceph ships a `rados` CLI as part of every cluster install, so this
// backend shells out to it the same way a deployment-time tool would,
// documented in DESIGN.md as the stdlib-only stand-in for a librados
// binding. `rados get` has no partial read of its own, so reads fetch
// the whole object into a temp file and slice the requested range from
// it.
type CephBackend struct {
	ClusterName string
	UserName    string
	ConfFile    string
	Pool        string
}

// NewCephBackend constructs a backend bound to one pool.
func NewCephBackend(clusterName, userName, confFile, pool string) *CephBackend {
	return &CephBackend{ClusterName: clusterName, UserName: userName, ConfFile: confFile, Pool: pool}
}

func (b *CephBackend) Kind() string { return "ceph" }

func (b *CephBackend) radosArgs(extra ...string) []string {
	args := []string{"--cluster", b.ClusterName, "--name", b.UserName, "--conf", b.ConfFile, "--pool", b.Pool}
	return append(args, extra...)
}

func (b *CephBackend) Read(ctx context.Context, object string, offset, length int64) ([]byte, error) {
	tmp, err := os.CreateTemp("", "rok4-ceph-*.tile")
	if err != nil {
		return nil, fmt.Errorf("ceph backend: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, "rados", b.radosArgs("get", object, tmpPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if bytes.Contains(stderr.Bytes(), []byte("No such file or directory")) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ceph backend: rados get %s: %w (%s)", object, err, stderr.String())
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("ceph backend: reading staged object: %w", err)
	}
	if offset+length > int64(len(data)) {
		return nil, ErrOutOfRange
	}
	return data[offset : offset+length], nil
}

func (b *CephBackend) Write(ctx context.Context, object string, offset int64, data []byte) error {
	if offset != 0 {
		return fmt.Errorf("ceph backend: partial object writes are not supported")
	}
	tmp, err := os.CreateTemp("", "rok4-ceph-*.tile")
	if err != nil {
		return fmt.Errorf("ceph backend: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ceph backend: staging object: %w", err)
	}
	tmp.Close()

	cmd := exec.CommandContext(ctx, "rados", b.radosArgs("put", object, tmpPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ceph backend: rados put %s: %w (%s)", object, err, stderr.String())
	}
	return nil
}
