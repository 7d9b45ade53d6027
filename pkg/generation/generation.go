// Package generation provides monotonically increasing search-generation
// counters. Every new search (and every clear) takes the next generation;
// a late result is rendered only while its generation is still current.
package generation

import (
	"context"
	"sync/atomic"
)

// Counter hands out generations for one display surface.
type Counter interface {
	// Next advances the counter and returns the new generation.
	Next(ctx context.Context) (uint64, error)

	// Current returns the latest generation handed out.
	Current(ctx context.Context) (uint64, error)
}

// Toucher is implemented by counters whose state expires. Touch extends
// the expiry without advancing the generation.
type Toucher interface {
	Touch(ctx context.Context) error
}

// MemoryCounter is a process-local Counter.
type MemoryCounter struct {
	n atomic.Uint64
}

// NewMemoryCounter creates a counter starting at generation 0.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{}
}

// Next implements Counter.
func (c *MemoryCounter) Next(context.Context) (uint64, error) {
	return c.n.Add(1), nil
}

// Current implements Counter.
func (c *MemoryCounter) Current(context.Context) (uint64, error) {
	return c.n.Load(), nil
}
