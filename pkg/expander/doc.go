// Package expander dereferences a reference list into entity summaries.
//
// Every reference needs its own detail fetch. The expander dispatches those
// fetches to a bounded worker pool (default 10 workers) and hands each
// resolved entity to a single render callback, one at a time, in completion
// order. A failed entry is skipped: siblings keep going and no aggregate
// error is returned, only counts in the Result.
//
// A Guard lets the caller discard results that belong to a superseded
// search: it is consulted right before each render.
//
// Example usage:
//
//	exp := expander.New(pokeClient, expander.DefaultConfig())
//	res := exp.Expand(ctx, refs, guard, func(item expander.Item) {
//		surface.AppendCard(gen, item)
//	})
package expander
