// Package boundary provides the byte-level predicates that decide where
// one sqllog record ends and the next begins. Both predicates are pure
// and never error: every downstream component treats them as the single
// oracle for "is this a new record".
package boundary

import "bytes"

const (
	// TimestampLen is the fixed length of a record timestamp.
	TimestampLen = 23

	// MinHeaderLen is the minimum length of a record header line:
	// timestamp, one space and the opening parenthesis.
	MinHeaderLen = 25

	// MetaStart is the index of the first metadata byte on a header
	// line (just past "<timestamp> (").
	MetaStart = 25
)

// separators maps timestamp offsets to their required separator byte.
// Every other offset must hold an ASCII digit.
var separators = [TimestampLen]byte{
	4: '-', 7: '-', 10: ' ', 13: ':', 16: ':', 19: '.',
}

var (
	epMarker = []byte("EP[")
	ipMarker = []byte("ip:::ffff:")

	// fieldMarkers are the mandatory metadata prefixes following EP,
	// in their fixed order.
	fieldMarkers = [][]byte{
		[]byte("sess:"),
		[]byte("thrd:"),
		[]byte("user:"),
		[]byte("trxid:"),
		[]byte("stmt:"),
		[]byte("appname:"),
	}

	closeSpace = []byte(") ")
)

// IsTimestamp reports whether b is exactly a "YYYY-MM-DD HH:MM:SS.mmm"
// timestamp: 23 bytes, separators at offsets 4, 7, 10, 13, 16 and 19,
// ASCII digits everywhere else.
func IsTimestamp(b []byte) bool {
	if len(b) != TimestampLen {
		return false
	}
	for i := 0; i < TimestampLen; i++ {
		if sep := separators[i]; sep != 0 {
			if b[i] != sep {
				return false
			}
			continue
		}
		if b[i] < '0' || b[i] > '9' {
			return false
		}
	}
	return true
}

// CloseParenIndex locates the index of the parenthesis closing the
// metadata block on a header line. The first occurrence of ") " is
// preferred so a ')' embedded in the SQL body is not mistaken for the
// metadata close; when no ") " exists the last ')' on the line is used.
// Returns -1 when the line has no closing parenthesis at all.
func CloseParenIndex(line []byte) int {
	if i := bytes.Index(line, closeSpace); i >= 0 {
		return i
	}
	return bytes.LastIndexByte(line, ')')
}

// IsRecordHeader reports whether line is a valid record header: a valid
// timestamp, " (" at offsets 23-24, a closed metadata block, and the
// seven mandatory field markers in fixed order with an optional eighth
// client-IP field. Fields are separated by exactly one space; a double
// space anywhere in the metadata invalidates the line.
func IsRecordHeader(line []byte) bool {
	if len(line) < MinHeaderLen {
		return false
	}
	if !IsTimestamp(line[:TimestampLen]) {
		return false
	}
	if line[TimestampLen] != ' ' || line[TimestampLen+1] != '(' {
		return false
	}
	end := CloseParenIndex(line)
	if end < MetaStart {
		return false
	}
	return validMetaFields(line[MetaStart:end])
}

// validMetaFields checks the field markers of a metadata block. An
// eighth field is accepted when it is the IP marker, or when the
// appname value is empty and the extra token does not announce an IP:
// some producers emit space-containing application names without
// escaping, and that single continuation token is tolerated.
func validMetaFields(meta []byte) bool {
	fields := bytes.Split(meta, []byte{' '})
	if len(fields) != 7 && len(fields) != 8 {
		return false
	}
	for _, f := range fields {
		if len(f) == 0 {
			// Double space between fields.
			return false
		}
	}
	if !bytes.HasPrefix(fields[0], epMarker) {
		return false
	}
	for i, marker := range fieldMarkers {
		if !bytes.HasPrefix(fields[i+1], marker) {
			return false
		}
	}
	if len(fields) == 8 {
		if bytes.HasPrefix(fields[7], ipMarker) {
			return true
		}
		appnameEmpty := len(fields[6]) == len("appname:")
		return appnameEmpty && !bytes.HasPrefix(fields[7], []byte("ip:"))
	}
	return true
}
