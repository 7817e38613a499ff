// Package services defines shared utilities consumed by the pipeline stages
// and the wrappers around external tools.
//
// Key responsibilities:
//   - Context helpers that stamp the media file and stage name for logging.
//   - Structured error markers plus the Wrap helper so per-file failures can
//     be classified (external tool, validation, configuration, cancellation)
//     without string matching.
package services
