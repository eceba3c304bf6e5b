// Package loader discovers and parses migration files from disk.
//
// The on-disk convention is one JSON file per migration under one
// subdirectory per app label:
//
//	<root>/<app_label>/<NNNN>_<name>.json
//
// Entries whose name starts with ".", "_", or "~", or equals
// "__pycache__", are treated as private or temporary artifacts and
// skipped. Scanning is a one-shot blocking pass, intended to run once at
// process start; the source directory is assumed not to mutate during a
// run.
package loader
