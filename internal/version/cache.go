// Package version caches small advisory strings, such as the latest
// released version, fetched from a remote endpoint.
package version

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const maxValueSize = 1024

var (
	ErrInvalidName = errors.New("invalid version name")

	validName = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)
)

// Cache reads <dir>/<name> while it is younger than maxAge and refreshes it
// from <baseURL>/<name> otherwise.
type Cache struct {
	dir        string
	baseURL    string
	maxAge     time.Duration
	httpClient *http.Client
	now        func() time.Time
}

func NewCache(dir, baseURL string, maxAge time.Duration) *Cache {
	return &Cache{
		dir:        dir,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxAge:     maxAge,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// Get returns the cached value for name, refreshing it when stale. A stale
// value is still returned when the refresh fails.
func (c *Cache) Get(ctx context.Context, name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := filepath.Join(c.dir, name)
	cached, modTime, readErr := readValue(path)
	if readErr == nil && c.now().Sub(modTime) < c.maxAge {
		return cached, nil
	}

	fresh, err := c.Refresh(ctx, name)
	if err != nil {
		if readErr == nil {
			log.Printf("Failed to refresh %s, serving stale value: %v", name, err)
			return cached, nil
		}
		return "", err
	}
	return fresh, nil
}

// Refresh fetches name from the remote endpoint and stores it.
func (c *Cache) Refresh(ctx context.Context, name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+name, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", name, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxValueSize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	value := strings.TrimSpace(string(data))

	if err := c.write(name, value); err != nil {
		return "", err
	}
	return value, nil
}

// Clear removes every cached value.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func readValue(path string) (string, time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", time.Time{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", time.Time{}, err
	}
	return strings.TrimSpace(string(data)), info.ModTime(), nil
}

// write replaces the file atomically so readers never see a partial value.
func (c *Cache) write(name, value string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp_"+name+"_")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, filepath.Join(c.dir, name))
}
