/*
Package weft is a reactive dataflow engine: typed nodes with input and output
ports, wired into a graph whose derived values update automatically as inputs
change.

# Concept

A node kind is described once by a Definition (its ports, default config and
compute function) and registered in a catalog. Node instances are created
from those kinds, fed values on their inputs and connected output to input.
Whenever a node is fully populated and one of its inputs changes value, it
recomputes; when its output changes, the new value flows to every connected
input. Connections are type-checked, and a value equal to the current one
triggers nothing.

# Concurrency

All mutations go through a single command goroutine, so every call and the
cascade it triggers run to completion before the next call starts. Async
node kinds compute on their own goroutines and post their results back to
the command queue.

# Usage

	eng := weft.New()
	defer eng.Close()

	ctx := context.Background()
	eng.CreateNode(ctx, "Constant", "c", domain.Config{"value": 5})
	eng.CreateNode(ctx, "Double", "d", nil)
	eng.Connect(ctx, "c", "d", "x")

	out, state, _ := eng.Output(ctx, "d") // 10, populated

Persistence, HTTP, MCP and file adapters live under pkg/adapters; the weft
command wires them together.
*/
package weft
