// Package sqllog parses DM database SQL trace logs (sqllog files).
//
// A sqllog file is a sequence of multi-line records. Each record starts
// with a 23-character timestamp and a parenthesized metadata block,
// followed by the SQL text, which may span further lines, and an
// optional trailing suffix of execution indicators. Nothing but the next
// record's timestamp marks the end of a record, so the package carries
// its own segmenter rather than splitting on newlines.
//
// Three entry points cover the common shapes of consumption:
//
//   - ParseRecord parses one record already held in memory.
//   - Open returns a Reader that streams entries lazily from a file of
//     any size in constant memory.
//   - ParseFile reads a whole file eagerly and can parse records on
//     several goroutines.
//
// A Watcher follows a growing sqllog file and emits entries as the
// server appends records.
package sqllog
