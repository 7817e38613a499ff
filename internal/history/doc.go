// Package history records every transcode attempt in SQLite so past runs
// can be listed with "tracksift history".
//
// Each row carries the run id of the interactive session, the source and
// output paths, the exact ffmpeg command, and the final status. Schema
// changes bump schemaVersion; users delete the database to adopt the new
// schema.
package history
