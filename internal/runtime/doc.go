// Package runtime implements change propagation over a weft graph.
//
// The Engine owns a graph.Table and decides when nodes recompute: a node
// computes when it is fully populated and one of its inputs (or its config)
// changed value, and it forwards its output downstream only when the output
// changed. Cascades are depth-first and run to completion inside the call
// that triggered them; nothing is batched or coalesced.
//
// Engine is not safe for concurrent use. Async computes run on their own
// goroutines and hand their results back through a Dispatcher, which must
// deliver them to the goroutine that owns the Engine.
package runtime
