// Package logging assembles structured slog loggers and formatting helpers used
// across tracksift.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and stamps every record with the run identifier so a log file that
// spans several interactive sessions can be split back into runs. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Console output goes to stderr by default: stdout belongs to the interactive
// prompts and the transcode progress bar.
package logging
