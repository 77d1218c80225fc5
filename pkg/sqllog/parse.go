package sqllog

import (
	"github.com/sqllog/sqllog-go/internal/record"
	"github.com/sqllog/sqllog-go/pkg/sqllog/entry"
)

// ParseRecord parses one raw record held in memory: the header line plus
// any continuation lines, newline separated. A trailing newline is
// tolerated.
func ParseRecord(raw []byte) (*entry.Entry, error) {
	return record.Parse(raw)
}

// ParseRecordLines parses a record already split into lines (header
// first, terminators stripped).
func ParseRecordLines(lines []string) (*entry.Entry, error) {
	return record.ParseLines(lines)
}
