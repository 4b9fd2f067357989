// Package nodes provides the builtin node catalog: constants, arithmetic,
// boolean logic, text and number-array nodes, plus an async Delay node.
//
// Register them into a registry with RegisterAll, or take a fresh populated
// registry from Builtin.
package nodes
