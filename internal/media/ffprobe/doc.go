// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no tracksift-specific dependencies.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle/attachment stream properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns parsed Result
//
// Helper methods on Result provide stream counts, the primary video stream,
// frame-count estimation for progress display, and size/duration parsing.
package ffprobe
