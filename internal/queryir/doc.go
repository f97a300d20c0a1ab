// Package queryir provides the structured query model that callers build
// before translation.
//
// A Query names one worksheet (optionally narrowed by a cell range), carries
// a filter predicate tree, an optional projection, ordering clauses in
// declaration order, and an ordered list of result operators.
//
// ARCHITECTURE:
//
//	[caller] → [Query IR] → [querysql.Translator] → SQL + params
//	                                              → local post-pass plan
//
// SEALED INTERFACES:
//
// Expr and Operator are sealed interfaces using the marker method pattern.
// Only types in this package implement them, which lets the translator and
// executor switch over every variant exhaustively. Adding an operator means
// adding a type here and a case to each switch.
//
// Example:
//
//	switch op := op.(type) {
//	case Count, LongCount:
//	    // push down as COUNT(*)
//	case Skip:
//	    // push down as OFFSET, or defer
//	default:
//	    // unknown operator - reject
//	}
//
// MEMBERS, NOT COLUMNS:
//
// Member nodes name target properties. The translator resolves them to
// source columns through the query's mapping configuration, so a filter on
// property "Age" reads whatever column "Age" is mapped to.
package queryir
