// Package history implements the resolution engine: given a path, a
// traversal policy, and an exclusion set, it finds the most recent qualifying
// commit (resolver), the union of contributing authors (aggregator), and the
// maximum across a file and its dependencies (combiner). All results are
// deterministic for a fixed repository state and degrade to warnings rather
// than errors when history is incomplete.
package history
