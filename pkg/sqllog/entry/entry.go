// Package entry defines the parsed form of a sqllog record and the
// parse-error taxonomy shared by the streaming and batch interfaces.
package entry

// TimestampLen is the exact length of a record timestamp,
// "YYYY-MM-DD HH:MM:SS.mmm".
const TimestampLen = 23

// Entry is one fully parsed sqllog record.
type Entry struct {
	// Timestamp is the raw 23-character timestamp from the header line.
	Timestamp string `json:"ts"`

	// Meta holds the parenthesized metadata block from the header line.
	Meta Metadata `json:"meta"`

	// Body is the SQL text. Continuation lines are joined by single
	// newlines. When Indicators is non-nil the indicator suffix has been
	// stripped from the body.
	Body string `json:"body"`

	// Indicators holds the trailing execution statistics, if all three
	// were present and well formed. Partial or malformed indicator sets
	// are never exposed: Indicators is either complete or nil.
	Indicators *Indicators `json:"indicators,omitempty"`
}

// Metadata is the parenthesized field block of a record header line.
// The first seven fields are mandatory and appear in fixed order;
// ClientIP is optional and empty when absent.
type Metadata struct {
	ExecPoint   uint8  `json:"ep"`
	SessionID   string `json:"sess"`
	ThreadID    string `json:"thrd"`
	Username    string `json:"user"`
	TrxID       string `json:"trxid"`
	StatementID string `json:"stmt"`
	AppName     string `json:"appname"`
	ClientIP    string `json:"ip,omitempty"`
}

// Indicators is the optional trailing performance suffix of a record.
type Indicators struct {
	// ExecTimeMillis is the execution time in milliseconds.
	ExecTimeMillis float32 `json:"exectime_ms"`
	// RowCount is the number of affected rows.
	RowCount uint32 `json:"rowcount"`
	// ExecID is the execution identifier.
	ExecID int64 `json:"exec_id"`
}

// HasIndicators reports whether the entry carries the execution suffix.
func (e *Entry) HasIndicators() bool {
	return e.Indicators != nil
}
