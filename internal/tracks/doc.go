// Package tracks turns probe output into per-type stream descriptors and
// decides which audio and subtitle streams survive a transcode.
//
// Normalize assigns type-relative indices, Select applies the language
// heuristics and the fallback post-pass, Override applies a user's explicit
// choice, and Review drives the interactive show/modify loop until the user
// is satisfied. All decision values are immutable; each step returns a new
// Selection.
package tracks
