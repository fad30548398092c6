// Package check runs the audit validators against a configured database.
//
// Validators are registered statically and grouped into phases that run in
// order:
//
//	Setup       tables and revision columns exist, unconfigured audit tables
//	Structure   audit tables carry every compared content column
//	Constraints Remove rows hold no residual data
//	Content     revision flow and reconciliation with live content
//
// Within a phase, tables are evaluated in parallel, bounded by the
// configured parallelism. Each table is owned by one goroutine per phase, so
// its cached history and snapshot need no locking. A table with a
// configuration defect is dropped from later phases, together with every
// table that inherits from it. Outcomes are collected into per-table slots
// and folded into a report.Report once the last phase completes.
package check
