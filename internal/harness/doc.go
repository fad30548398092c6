// Package harness runs audit scenarios end to end.
//
// A scenario is a YAML file describing a schema, a sequence of revisions
// and content changes, the tables to check, and assertions on the
// resulting report. Run builds the database with testutil.EnversFixture,
// runs every validator through check.Runner with a fixed run id, and
// evaluates the assertions. RunWithGolden additionally compares the text
// report with testdata/golden/<name>.golden.
//
// The harness is test infrastructure: Run takes a *testing.T and fails the
// test when the scenario's own setup statements are invalid.
package harness
