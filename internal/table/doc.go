// Package table parses the tabular text format chains are exchanged in.
//
// A table holds the draws for exactly one parameter:
//
//	theta
//	0.12  1.40
//	0.09  1.38
//	...
//
// The first line is the parameter name. Every following line is one draw, as
// whitespace-delimited floating point values. All rows must have the same
// number of columns. A single-column table yields a flat trace of scalar
// draws; k columns yield an (n x k) trace.
//
// Parse failures are reported as MALFORMED_TABLE errors naming the source and
// the offending line. Parsing never produces a partial table.
package table
