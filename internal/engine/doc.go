// Package engine executes structured queries against a source.
//
// An execution moves through a fixed sequence of states:
//
//	Idle -> Translating -> Executing -> ClassifyingShape -> Materializing
//	     -> PostProcessing -> Completed
//
// Any state may move to Failed. Each transition is logged at debug level
// under the execution's ID.
//
// Translation pushes filtering, projection, ordering, Skip/Take windows and
// aggregates into SQL. Operators the source cannot express in order
// (Reverse, Last, and any Skip/Take that follows them) run locally over the
// materialized rows, in declaration order, before element selection.
//
// Source failures are classified into the query error taxonomy: a missing
// worksheet becomes SourceNotFound, a column the worksheet lacks becomes
// UnknownColumnName, and anything else is returned unchanged.
//
// An Executor is not safe for concurrent use. In persistent mode it holds
// one connection across executions; callers serialize access and Close it.
package engine
