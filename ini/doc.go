// Package ini parses and writes the line-based project description format used by
// MapBasic project files (.mbp).
//
// A file is a set of named sections, each holding named keys, each key holding an
// ordered list of string values:
//
//	[Link]
//	Application=app.mbx
//	Module=main.mbo
//	Module=util.mbo
//
// Section and key names are compared case-insensitively after trimming surrounding
// whitespace; the first spelling seen is kept. A repeated key appends a value, and a
// value already present on the key is ignored.
//
// Parsing never fails on malformed content. Lines before the first section header are
// skipped, and any line inside a section that is neither a header nor a key=value pair
// becomes a key without values. Such keys are not written back by Save, so a parse/save
// cycle drops comments and layout while keeping section, key and value content.
//
// Lookups return nil (or false) for missing entries rather than an error.
// A File is not safe for concurrent use.
package ini
