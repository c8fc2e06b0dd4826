// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no cliptrim-specific dependencies and could be extracted
// as a standalone library. Inspect executes ffprobe and returns a parsed
// Result; Parse decodes a payload obtained elsewhere. Helper methods expose
// duration, frame rate, and resolution without callers touching the raw
// string fields ffprobe emits.
package ffprobe
