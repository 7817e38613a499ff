// Package preflight provides readiness checks for the external tools and
// filesystem paths tracksift depends on.
//
// The interactive run checks tools before prompting and verifies that source
// directories are writable before any transcode starts. The "tracksift check"
// command renders the same results as a table.
package preflight
