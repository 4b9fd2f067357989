// Package graph holds the node set of a weft graph and the connection table
// between nodes.
//
// A Table is purely structural: it enforces id uniqueness, port existence and
// data type compatibility, and answers "who feeds whom". It never computes;
// propagation is the runtime's job. Tables are not safe for concurrent use.
package graph
