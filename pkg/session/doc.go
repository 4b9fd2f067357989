/*
Package session coordinates persistence of graph snapshots.

A Manager serializes access to each graph id with a reference-counted local
mutex and, optionally, a distributed lock, so checkpoints taken by several
replicas of the same graph never interleave.
*/
package session
