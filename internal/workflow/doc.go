// Package workflow drives the interactive run:
// navigate -> scan -> select files -> analyze -> review -> configure ->
// confirm -> process.
//
// Every collaborator (prompts, filesystem, prober, transcoder, GPU detection,
// history) is injected through options so the full pipeline can be exercised
// with scripted answers in tests. Failures before any file is selected abort
// the run; per-file analysis and transcode failures are reported and the
// batch continues. A cancelled prompt ends the run immediately.
package workflow
