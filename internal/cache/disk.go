package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheEnvVar   = "PDF2AI_CACHE_DIR"
	cacheSubdir   = "pdf2ai/summaries"
	partialSuffix = ".part"
	metaSuffix    = ".meta"
)

// DiskClient keeps one file per entry under a cache directory. Expiry is
// recorded in a sidecar meta file.
type DiskClient struct {
	dir string
	now func() time.Time
}

type diskMeta struct {
	Key       string    `json:"key"`
	StoredAt  time.Time `json:"storedAt"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Size      int       `json:"size"`
}

// NewDiskClient uses dir, or PDF2AI_CACHE_DIR, or the user cache dir.
func NewDiskClient(dir string) (*DiskClient, error) {
	if dir == "" {
		dir = os.Getenv(cacheEnvVar)
	}
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "pdf2ai-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskClient{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *DiskClient) Dir() string { return c.dir }

func (c *DiskClient) Get(_ context.Context, key string) ([]byte, error) {
	dataPath, metaPath, _ := c.pathsFor(key)
	meta, err := readMeta(metaPath)
	if err != nil {
		return nil, ErrCacheMiss
	}
	if !meta.ExpiresAt.IsZero() && c.now().After(meta.ExpiresAt) {
		_ = c.remove(key)
		return nil, ErrCacheMiss
	}
	data, err := os.ReadFile(dataPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("disk get: %w", err)
	}
	return data, nil
}

func (c *DiskClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	dataPath, metaPath, partialPath := c.pathsFor(key)
	if err := os.WriteFile(partialPath, value, 0o644); err != nil {
		return fmt.Errorf("disk set: %w", err)
	}
	if err := os.Rename(partialPath, dataPath); err != nil {
		return fmt.Errorf("disk set: %w", err)
	}
	meta := diskMeta{Key: key, StoredAt: c.now().UTC(), Size: len(value)}
	if ttl > 0 {
		meta.ExpiresAt = meta.StoredAt.Add(ttl)
	}
	if err := writeMeta(metaPath, meta); err != nil {
		return fmt.Errorf("disk set: %w", err)
	}
	return nil
}

func (c *DiskClient) Delete(_ context.Context, key string) error {
	return c.remove(key)
}

func (c *DiskClient) Close() error { return nil }

func (c *DiskClient) remove(key string) error {
	dataPath, metaPath, partialPath := c.pathsFor(key)
	for _, p := range []string{dataPath, metaPath, partialPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("disk delete: %w", err)
		}
	}
	return nil
}

func (c *DiskClient) pathsFor(key string) (string, string, string) {
	name := fileKey(key)
	return filepath.Join(c.dir, name), filepath.Join(c.dir, name+metaSuffix), filepath.Join(c.dir, name+partialSuffix)
}

func fileKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

func readMeta(path string) (diskMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return diskMeta{}, err
	}
	var meta diskMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return diskMeta{}, err
	}
	return meta, nil
}

func writeMeta(path string, meta diskMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
