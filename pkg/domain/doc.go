/*
Package domain contains the core model of a weft graph.

It defines typed values and ports, node definitions and the mutable node
instances built from them, the connections between nodes and the events the
engine emits while propagating changes. Nothing here performs I/O or keeps
global state; the graph, registry and runtime packages build on these types.

# Key Entities

  - Value: a typed payload carried by a port (Number, Boolean, NumberArray, String).
  - PortSpec: a named, directed, typed slot on a node.
  - Definition: the catalog entry for a node kind, including its compute function.
  - Node: the runtime state of one node (inputs, output, config, state).
  - Connection: a directed edge from a node's output into another node's input.
  - Snapshot: the persisted form of a whole graph.
*/
package domain
