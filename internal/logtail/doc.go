// Package logtail reads the newest entries of the client's own zap log so
// the UI can show them without leaving the terminal.
//
// Read keeps a ring buffer of maxLines, so memory stays proportional to the
// requested tail rather than to the file. Lines written by either zap
// encoder (JSON or development console) are split into level, component
// and message; unrecognised lines such as stack traces keep only Raw.
//
// A missing log file is not an error: logging may be disabled.
package logtail
