// Package record parses one raw record span into its structured form:
// timestamp, metadata fields, SQL body and the optional trailing
// indicator suffix.
package record

import (
	"strconv"
	"strings"

	"github.com/sqllog/sqllog-go/internal/boundary"
	"github.com/sqllog/sqllog-go/pkg/sqllog/entry"
)

// indicatorScanWindow bounds the backward scan for the indicator suffix.
// Indicators sit at the very end of a record; anything further back than
// this is body text.
const indicatorScanWindow = 256

// indicator keywords with their value terminators, e.g.
// "EXECTIME: 1.477(ms) ROWCOUNT: 1(rows) EXEC_ID: 1975."
const (
	kwExecTime = "EXECTIME:"
	kwRowCount = "ROWCOUNT:"
	kwExecID   = "EXEC_ID:"

	termExecTime = "(ms)"
	termRowCount = "(rows)"
	termExecID   = "."
)

// Parse converts one raw record span (as produced by the segmenter,
// trailing newline included) into an Entry.
func Parse(raw []byte) (*entry.Entry, error) {
	return ParseLines(splitLines(raw))
}

// ParseLines parses a record already split into lines: the header line
// followed by any continuation lines. Line terminators must already be
// stripped.
func ParseLines(lines []string) (*entry.Entry, error) {
	if len(lines) == 0 {
		return nil, entry.ErrEmptyInput
	}
	first := lines[0]
	if len(first) < boundary.MinHeaderLen {
		return nil, &entry.LineTooShortError{Length: len(first), Raw: first}
	}
	if !boundary.IsRecordHeader([]byte(first)) {
		return nil, &entry.InvalidHeaderError{Raw: first}
	}

	closeIdx := boundary.CloseParenIndex([]byte(first))
	if closeIdx < 0 {
		return nil, &entry.MissingClosingParenError{Raw: first}
	}

	meta, err := parseMeta(first[boundary.MetaStart:closeIdx])
	if err != nil {
		return nil, err
	}

	body := buildBody(first[closeIdx+1:], lines[1:])
	e := &entry.Entry{
		Timestamp: first[:entry.TimestampLen],
		Meta:      meta,
		Body:      body,
	}

	// The indicator suffix is all-or-nothing: any missing or malformed
	// part leaves the body untouched and Indicators nil.
	if ind, cut, ierr := parseIndicators(body); ierr == nil {
		e.Indicators = ind
		e.Body = strings.TrimRight(body[:cut], " \t")
	}
	return e, nil
}

// splitLines splits a raw span into terminator-free lines. Trailing
// newlines do not produce a final empty line.
func splitLines(raw []byte) []string {
	s := strings.TrimRight(string(raw), "\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// buildBody joins the header tail with the continuation lines. The
// header tail has its leading whitespace trimmed; continuation lines are
// kept verbatim and joined by single newlines. A whitespace-only header
// tail contributes nothing when continuations follow.
func buildBody(headerTail string, cont []string) string {
	frag := strings.TrimLeft(headerTail, " \t")
	if len(cont) == 0 {
		return frag
	}
	if frag == "" {
		return strings.Join(cont, "\n")
	}
	return frag + "\n" + strings.Join(cont, "\n")
}

// parseMeta parses the metadata block between the header parentheses.
func parseMeta(meta string) (entry.Metadata, error) {
	var m entry.Metadata

	fields := strings.Split(meta, " ")
	if len(fields) < 7 {
		return m, &entry.MetaFieldCountError{Count: len(fields), Raw: meta}
	}

	ep, err := parseExecPoint(fields[0], meta)
	if err != nil {
		return m, err
	}
	m.ExecPoint = ep

	positional := []struct {
		prefix string
		dst    *string
	}{
		{"sess:", &m.SessionID},
		{"thrd:", &m.ThreadID},
		{"user:", &m.Username},
		{"trxid:", &m.TrxID},
		{"stmt:", &m.StatementID},
		{"appname:", &m.AppName},
	}
	for i, p := range positional {
		v, err := fieldValue(fields[i+1], p.prefix, meta)
		if err != nil {
			return m, err
		}
		*p.dst = v
	}

	// An empty appname may be followed by one unescaped token that is
	// actually part of the application name, as long as it does not
	// announce the client IP.
	next := 7
	if m.AppName == "" && next < len(fields) && !strings.HasPrefix(fields[next], "ip:") {
		m.AppName = fields[next]
		next++
	}

	if next < len(fields) {
		tok := fields[next]
		if !strings.HasPrefix(tok, "ip:::ffff:") {
			return m, &entry.FieldFormatError{Expected: "ip:::ffff:", Actual: tok, Raw: meta}
		}
		m.ClientIP = tok[len("ip:::ffff:"):]
		next++
	}
	if next != len(fields) {
		return m, &entry.MetaFieldCountError{Count: len(fields), Raw: meta}
	}
	return m, nil
}

// parseExecPoint parses the "EP[n]" field. Shape failures and numeric
// failures are reported as distinct errors.
func parseExecPoint(field, meta string) (uint8, error) {
	if !strings.HasPrefix(field, "EP[") || !strings.HasSuffix(field, "]") {
		return 0, &entry.ExecPointFormatError{Value: field, Raw: meta}
	}
	inner := field[len("EP[") : len(field)-1]
	n, err := strconv.ParseUint(inner, 10, 8)
	if err != nil {
		return 0, &entry.ExecPointParseError{Value: inner, Raw: meta}
	}
	return uint8(n), nil
}

// fieldValue strips the expected prefix from a positional field.
func fieldValue(field, prefix, meta string) (string, error) {
	if !strings.HasPrefix(field, prefix) {
		return "", &entry.FieldFormatError{Expected: prefix, Actual: field, Raw: meta}
	}
	return field[len(prefix):], nil
}

// parseIndicators extracts the trailing indicator suffix from a body.
// The three keywords may appear in any order within the last
// indicatorScanWindow bytes. On success it returns the indicators and
// the body offset where the suffix begins. Any failure returns a non-nil
// error and the caller keeps the body intact.
func parseIndicators(body string) (*entry.Indicators, int, error) {
	start := 0
	if len(body) > indicatorScanWindow {
		start = len(body) - indicatorScanWindow
	}
	win := body[start:]

	var (
		ind      entry.Indicators
		seen     [3]bool
		searchIn = len(win)
		cut      = len(win)
	)
	keywords := [3]string{kwExecTime, kwRowCount, kwExecID}

	for range keywords {
		// Rightmost unseen keyword within the unconsumed prefix.
		best, bestKw := -1, -1
		for k, kw := range keywords {
			if seen[k] {
				continue
			}
			if p := strings.LastIndex(win[:searchIn], kw); p > best {
				best, bestKw = p, k
			}
		}
		if best < 0 {
			return nil, 0, &entry.IndicatorError{Reason: "indicator keyword missing", Raw: win}
		}

		val, err := indicatorValue(win[best:], keywords[bestKw])
		if err != nil {
			return nil, 0, err
		}
		if perr := assignIndicator(&ind, bestKw, val); perr != nil {
			return nil, 0, perr
		}
		seen[bestKw] = true
		searchIn = best
		if best < cut {
			cut = best
		}
	}
	return &ind, start + cut, nil
}

// indicatorValue isolates the text between a keyword and its terminator.
func indicatorValue(seg, kw string) (string, error) {
	term := termExecID
	switch kw {
	case kwExecTime:
		term = termExecTime
	case kwRowCount:
		term = termRowCount
	}
	rest := seg[len(kw):]
	t := strings.Index(rest, term)
	if t < 0 {
		return "", &entry.IndicatorError{Reason: "indicator terminator " + term + " missing", Raw: seg}
	}
	return strings.TrimSpace(rest[:t]), nil
}

// assignIndicator parses one indicator value into its slot. Index order
// follows the keywords array: exectime, rowcount, exec_id.
func assignIndicator(ind *entry.Indicators, k int, val string) error {
	switch k {
	case 0:
		f, err := strconv.ParseFloat(val, 32)
		if err != nil || f < 0 {
			return &entry.IndicatorError{Reason: "invalid EXECTIME value", Raw: val, Err: err}
		}
		ind.ExecTimeMillis = float32(f)
	case 1:
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			return &entry.IndicatorError{
				Reason: "invalid ROWCOUNT value",
				Raw:    val,
				Err:    &entry.IntParseError{Field: "ROWCOUNT", Value: val},
			}
		}
		ind.RowCount = uint32(n)
	case 2:
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return &entry.IndicatorError{
				Reason: "invalid EXEC_ID value",
				Raw:    val,
				Err:    &entry.IntParseError{Field: "EXEC_ID", Value: val},
			}
		}
		ind.ExecID = n
	}
	return nil
}
