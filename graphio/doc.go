// Package graphio is flowsim's only filesystem-facing package: it parses
// the tree-structured XML graph documents described in spec.md §6 into a
// graphmodel.Graph plus an optional mapping.Platform, and emits analysis
// results back out as XML, Graphviz DOT, or an HTML report.
//
// Every other flowsim package operates purely on in-memory graphs and
// results; graphio is where those results meet a file.
package graphio
