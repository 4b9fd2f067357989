/*
Package ports defines the driven ports (interfaces) of a weft deployment.

These interfaces decouple the engine from storage backends, graph sources and
transport adapters.

# Key Interfaces

  - GraphEngine: the operations transport adapters (HTTP, MCP) drive.
  - GraphLoader: loads a graph snapshot from a source (file, Loam, memory).
  - SnapshotStore: persists named graph snapshots.
  - DistributedLocker: coordinates snapshot writes across replicas.
*/
package ports
