package loader

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// FileSystem abstracts where loaded sources live (local disk, memory, HTTP).
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool

	// Canonical maps a path to the key used for caching and cycle checks.
	Canonical(path string) string
}

// isURL reports whether a path carries a scheme such as https://.
func isURL(p string) bool { return strings.Contains(p, "://") }

// CompositeFS routes paths to mounted file systems by longest prefix, then
// by URL scheme, then to the fallback.
type CompositeFS struct {
	mu          sync.RWMutex
	filesystems map[string]FileSystem
	fallback    FileSystem
}

func NewCompositeFS() *CompositeFS {
	return &CompositeFS{filesystems: make(map[string]FileSystem)}
}

func (c *CompositeFS) SetFallback(fs FileSystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = fs
}

func (c *CompositeFS) Mount(prefix string, fs FileSystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filesystems[prefix] = fs
}

func (c *CompositeFS) findFS(p string) FileSystem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var bestMatch string
	var bestFS FileSystem
	for prefix, fs := range c.filesystems {
		if strings.HasPrefix(p, prefix) && len(prefix) > len(bestMatch) {
			bestMatch = prefix
			bestFS = fs
		}
	}
	if bestFS != nil {
		return bestFS
	}
	if isURL(p) {
		scheme := strings.SplitN(p, "://", 2)[0] + "://"
		if fs, ok := c.filesystems[scheme]; ok {
			return fs
		}
	}
	return c.fallback
}

func (c *CompositeFS) ReadFile(p string) ([]byte, error) {
	fs := c.findFS(p)
	if fs == nil {
		return nil, fmt.Errorf("no filesystem mounted for path: %s", p)
	}
	return fs.ReadFile(p)
}

func (c *CompositeFS) Exists(p string) bool {
	fs := c.findFS(p)
	return fs != nil && fs.Exists(p)
}

func (c *CompositeFS) Canonical(p string) string {
	if fs := c.findFS(p); fs != nil {
		return fs.Canonical(p)
	}
	return p
}

// LocalFS reads from disk.  Relative paths are taken from basePath.
type LocalFS struct {
	basePath string
}

func NewLocalFS(basePath string) *LocalFS {
	return &LocalFS{basePath: basePath}
}

func (l *LocalFS) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(l.basePath, p)
}

func (l *LocalFS) ReadFile(p string) ([]byte, error) {
	return os.ReadFile(l.resolvePath(p))
}

func (l *LocalFS) Exists(p string) bool {
	info, err := os.Stat(l.resolvePath(p))
	return err == nil && !info.IsDir()
}

func (l *LocalFS) Canonical(p string) string {
	full, err := filepath.Abs(l.resolvePath(p))
	if err != nil {
		return filepath.Clean(l.resolvePath(p))
	}
	return full
}

// MemoryFS is an in-memory file system, mostly for tests and embedding.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryFS() *MemoryFS {
	return &MemoryFS{files: make(map[string][]byte)}
}

func (m *MemoryFS) ReadFile(p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, exists := m.files[path.Clean(p)]
	if !exists {
		return nil, fmt.Errorf("file not found: %s", p)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryFS) WriteFile(p string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path.Clean(p)] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryFS) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[path.Clean(p)]
	return exists
}

func (m *MemoryFS) Canonical(p string) string { return path.Clean(p) }

// PreloadFiles adds source files to the memory filesystem.
func (m *MemoryFS) PreloadFiles(files map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p, content := range files {
		m.files[path.Clean(p)] = []byte(content)
	}
}

// HTTPFileSystem fetches sources over HTTP and caches the bodies.
type HTTPFileSystem struct {
	baseURL string
	client  *http.Client
	cache   sync.Map // url -> []byte
}

func NewHTTPFileSystem(baseURL string, client *http.Client) *HTTPFileSystem {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFileSystem{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (h *HTTPFileSystem) url(p string) string {
	if isURL(p) {
		return p
	}
	return h.baseURL + "/" + strings.TrimPrefix(p, "/")
}

func (h *HTTPFileSystem) ReadFile(p string) ([]byte, error) {
	u := h.url(p)
	if cached, ok := h.cache.Load(u); ok {
		return cached.([]byte), nil
	}
	resp, err := h.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %s", u, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	h.cache.Store(u, data)
	return data, nil
}

func (h *HTTPFileSystem) Exists(p string) bool {
	_, err := h.ReadFile(p)
	return err == nil
}

func (h *HTTPFileSystem) Canonical(p string) string {
	u, err := url.Parse(h.url(p))
	if err != nil {
		return h.url(p)
	}
	u.Path = path.Clean(u.Path)
	return u.String()
}

// ClearCache drops every cached body.
func (h *HTTPFileSystem) ClearCache() {
	h.cache.Clear()
}
