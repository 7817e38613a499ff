// Package display renders terminal output for the interactive run: track
// decisions, file labels, tables and the transcode progress bar. Colour is
// enabled only when the target writer is a terminal.
package display
