// Package detect implements the file-type detection engine: given bytes
// and/or a filename, it produces a detection result naming the matched
// file type, which strategy matched it, and a confidence score.
package detect

import (
	"path/filepath"
	"strings"

	"vaultkeeper/internal/chunkid"
	"vaultkeeper/internal/registry"
)

// Strategy names the detection technique that produced a Result.
type Strategy string

const (
	StrategyMagicNumber Strategy = "magic_number"
	StrategyExtension   Strategy = "extension"
	StrategyConformance Strategy = "conformance"
)

// confidence values per strategy, in strict priority order: magic number
// beats extension beats conformance.
const (
	confidenceMagicNumber = 0.8
	confidenceExtension   = 0.6
	confidenceConformance = 0.5
)

// Result is the outcome of a Detect call.
type Result struct {
	FileType   registry.FileTypeDescriptor
	Strategy   Strategy
	Confidence float64
}

// Engine runs the magic_number > extension > conformance detection chain
// against a FileTypeRegistry.
type Engine struct {
	registry   *registry.FileTypeRegistry
	parentUTI  string // optional: used only by DetectConformance
}

// New returns an Engine backed by reg. A nil reg uses the process-wide
// Global() registry.
func New(reg *registry.FileTypeRegistry) *Engine {
	if reg == nil {
		reg = registry.Global()
	}
	return &Engine{registry: reg}
}

// WithParentUTI returns a copy of e that also attempts conformance
// detection against parentUTI when magic-number and extension both miss.
func (e *Engine) WithParentUTI(parentUTI string) *Engine {
	cp := *e
	cp.parentUTI = parentUTI
	return &cp
}

// Detect runs the full strategy chain against data and filename, in
// strict priority order, returning the first strategy that matches.
func (e *Engine) Detect(filename string, data []byte) (Result, bool) {
	if d, ok := e.registry.LookupMagicNumber(data); ok {
		return Result{FileType: d, Strategy: StrategyMagicNumber, Confidence: confidenceMagicNumber}, true
	}
	if ext := extensionOf(filename); ext != "" {
		if d, ok := e.registry.LookupExtension(ext); ok {
			return Result{FileType: d, Strategy: StrategyExtension, Confidence: confidenceExtension}, true
		}
	}
	if e.parentUTI != "" {
		if conforms := e.registry.LookupConformance(e.parentUTI); len(conforms) > 0 {
			return Result{FileType: conforms[0], Strategy: StrategyConformance, Confidence: confidenceConformance}, true
		}
	}
	return Result{}, false
}

func extensionOf(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimPrefix(ext, ".")
}

// Classify implements archive.Classifier: it maps a Detect result to the
// (contentType, chunkType) pair the archive builder stores in a chunk's
// metadata. A miss yields an empty content type and chunkid.TypeFile,
// matching the behavior of having no classifier configured at all.
func (e *Engine) Classify(path string, peek []byte) (string, chunkid.ChunkType, error) {
	result, ok := e.Detect(path, peek)
	if !ok {
		return "", chunkid.TypeFile, nil
	}
	contentType := result.FileType.UTI
	if contentType == "" {
		contentType = result.FileType.DisplayName
	}
	return contentType, chunkTypeFor(result.FileType.Category), nil
}

// chunkTypeFor maps a matched descriptor's Category to the chunk type the
// archive builder records, defaulting an unset Category to a plain file.
func chunkTypeFor(category registry.Category) chunkid.ChunkType {
	switch category {
	case registry.CategoryArchive:
		return chunkid.TypeArchive
	case registry.CategoryDiskImage:
		return chunkid.TypeDiskImage
	default:
		return chunkid.TypeFile
	}
}
