package sqllog

import "github.com/sqllog/sqllog-go/pkg/sqllog/entry"

// Entry is one parsed sqllog record. See the entry package for field
// documentation and the parse-error taxonomy.
type Entry = entry.Entry

// Metadata is the parenthesized field block of a record header.
type Metadata = entry.Metadata

// Indicators is the optional trailing execution-statistics suffix.
type Indicators = entry.Indicators
