package registry

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// CompressionAdapter decompresses a stream of a known format.
type CompressionAdapter interface {
	Format() string
	Decompress(r io.Reader, w io.Writer) error
}

// CompressionDescriptor is a compression registry entry: a format tag, the
// extensions that select it, and a factory. Lookup returns the descriptor;
// Instantiate builds the adapter.
type CompressionDescriptor struct {
	Format     string
	Extensions []string
	New        func() (CompressionAdapter, error)
}

// Instantiate builds the adapter for this descriptor.
func (d CompressionDescriptor) Instantiate() (CompressionAdapter, error) {
	if d.New == nil {
		return nil, fmt.Errorf("registry: compression format %q has no factory", d.Format)
	}
	return d.New()
}

// CompressionRegistry maps compression format tags to descriptors.
type CompressionRegistry struct {
	mu       sync.RWMutex
	byFormat map[string]CompressionDescriptor
}

var globalCompression = NewCompressionRegistry()

// GlobalCompression returns the process-wide CompressionRegistry singleton.
func GlobalCompression() *CompressionRegistry { return globalCompression }

// NewCompressionRegistry returns an empty registry.
func NewCompressionRegistry() *CompressionRegistry {
	return &CompressionRegistry{byFormat: make(map[string]CompressionDescriptor)}
}

// ResetForTest clears every registered format.
func (r *CompressionRegistry) ResetForTest() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byFormat = make(map[string]CompressionDescriptor)
}

// Register adds d under d.Format.
func (r *CompressionRegistry) Register(d CompressionDescriptor, allowOverride bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byFormat[d.Format]; exists && !allowOverride {
		return fmt.Errorf("registry: compression format %q already registered", d.Format)
	}
	r.byFormat[d.Format] = d
	return nil
}

// LookupFormat returns the descriptor registered under format.
func (r *CompressionRegistry) LookupFormat(format string) (CompressionDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byFormat[format]
	return d, ok
}

// LookupURL returns the descriptor whose Extensions match url's extension.
func (r *CompressionRegistry) LookupURL(url string) (CompressionDescriptor, bool) {
	ext := extensionOf(url)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.byFormat {
		for _, e := range d.Extensions {
			if normalizeExtension(e) == ext {
				return d, true
			}
		}
	}
	return CompressionDescriptor{}, false
}

func extensionOf(url string) string {
	i := strings.LastIndexByte(url, '.')
	if i < 0 {
		return ""
	}
	return normalizeExtension(url[i+1:])
}
