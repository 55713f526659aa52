package orgstore

import (
	"strings"

	"vaultkeeper/internal/chunkid"
)

const (
	// MinDepth and MaxDepth bound the number of two-character fanout
	// segments GitStyle will use; depth outside this range is clamped.
	MinDepth = 1
	MaxDepth = 4

	fanoutSegmentLen = 2
)

// GitStyle stores a chunk at h[0:2]/h[2:4]/.../<id>, mirroring how git
// fans out loose objects to keep any one directory from growing too large.
// Depth is clamped into [MinDepth, MaxDepth].
type GitStyle struct {
	depth int
}

// NewGitStyle returns a git-style organization strategy with the given
// fanout depth, clamped into [MinDepth, MaxDepth].
func NewGitStyle(depth int) GitStyle {
	return GitStyle{depth: clampDepth(depth)}
}

func clampDepth(depth int) int {
	switch {
	case depth < MinDepth:
		return MinDepth
	case depth > MaxDepth:
		return MaxDepth
	default:
		return depth
	}
}

// Depth returns the effective (clamped) fanout depth.
func (g GitStyle) Depth() int { return g.depth }

func (g GitStyle) Build(id chunkid.ID) (string, error) {
	if err := chunkid.Validate(id); err != nil {
		return "", err
	}
	s := string(id)
	needed := g.depth * fanoutSegmentLen
	if len(s) < needed {
		return "", ErrInvalidID
	}

	var b strings.Builder
	for i := 0; i < g.depth; i++ {
		b.WriteString(s[i*fanoutSegmentLen : (i+1)*fanoutSegmentLen])
		b.WriteByte('/')
	}
	b.WriteString(s)
	return b.String(), nil
}

func (g GitStyle) Parse(path string) (chunkid.ID, error) {
	segments := strings.Split(path, "/")
	if len(segments) != g.depth+1 {
		return "", ErrInvalidPath
	}

	final := segments[len(segments)-1]
	id := chunkid.ID(final)
	if err := chunkid.Validate(id); err != nil {
		return "", ErrInvalidPath
	}

	needed := g.depth * fanoutSegmentLen
	if len(final) < needed {
		return "", ErrInvalidPath
	}
	for i := 0; i < g.depth; i++ {
		prefix := final[i*fanoutSegmentLen : (i+1)*fanoutSegmentLen]
		if segments[i] != prefix {
			return "", ErrInvalidPath
		}
	}

	return id, nil
}
