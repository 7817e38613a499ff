// Package encoding synthesizes ffmpeg command lines from a finalized track
// selection and runs them.
//
// BuildArgs is pure and deterministic: stream mapping, per-slot codec,
// metadata and disposition directives are emitted in a fixed order so the
// same selection always yields the same command. The Transcoder executes
// the command, streams ffmpeg's diagnostic output as line events, and parses
// progress lines into snapshots for display.
package encoding
