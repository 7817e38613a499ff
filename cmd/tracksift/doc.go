// Package main hosts the tracksift CLI.
//
// Running tracksift without a subcommand starts the interactive pipeline:
// browse to a directory, pick files, review the automatic track selection,
// choose an encode target and transcode. The remaining commands are
// non-interactive helpers for checking the environment, inspecting the
// transcode history and previewing the command a file would run with.
package main
