// Package pipeline implements named transformation stages that run over a
// shared Context, composing into chains for decompression and nested-format
// detection.
package pipeline

import "fmt"

// Context is the shared state threaded through a chain of Stages. URL is the
// artifact the next stage should act on; Values is a side channel stages use
// to record facts about what they did (compression_format,
// nested_compression_format, ...); Errors accumulates non-fatal failures so
// one stage's trouble doesn't stop the rest of the chain.
type Context struct {
	URL    string
	Values map[string]any
	Errors []error
}

// NewContext returns a Context positioned at url with an empty side channel.
func NewContext(url string) *Context {
	return &Context{URL: url, Values: make(map[string]any)}
}

// Set records a side-channel value.
func (c *Context) Set(key string, value any) {
	c.Values[key] = value
}

// String returns the side-channel value at key as a string, or "" if absent
// or not a string.
func (c *Context) String(key string) string {
	v, _ := c.Values[key].(string)
	return v
}

// Bool returns the side-channel value at key as a bool.
func (c *Context) Bool(key string) bool {
	v, _ := c.Values[key].(bool)
	return v
}

// Fail appends err to Errors without halting the chain.
func (c *Context) Fail(stage string, err error) {
	c.Errors = append(c.Errors, fmt.Errorf("%s: %w", stage, err))
}

// Ok reports whether no stage has failed so far.
func (c *Context) Ok() bool { return len(c.Errors) == 0 }

// Stage transforms a Context in place. A Stage must not abort the chain on a
// recoverable failure; it records the failure via Context.Fail and returns
// nil so later stages still run.
type Stage interface {
	Name() string
	Run(ctx *Context) error
}

// Chain runs stages in order over a single Context, stopping early only if a
// stage returns a non-nil error (a programmer error, not a data error —
// data errors are recorded via Context.Fail and do not stop the chain).
type Chain struct {
	stages []Stage
}

// NewChain returns a Chain that runs stages in order.
func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// Run executes every stage in order against ctx.
func (c *Chain) Run(ctx *Context) error {
	for _, s := range c.stages {
		if err := s.Run(ctx); err != nil {
			return fmt.Errorf("pipeline stage %q: %w", s.Name(), err)
		}
	}
	return nil
}
