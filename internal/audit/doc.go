// Package audit holds the validators that decide whether an audit history is
// consistent: the revision-flow state machine, reconciliation of the latest
// revision against live content, and the nullability rule for Remove rows.
//
// Validators are pure functions over already loaded record.History and
// record.Snapshot maps. They never stop at the first offending identity:
// violations are accumulated into one result per table. A table whose
// revision types cannot be read is a configuration defect and is reported as
// a *ConfigError instead of a result.
package audit
