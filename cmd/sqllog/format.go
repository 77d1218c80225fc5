package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sqllog/sqllog-go/pkg/sqllog"
)

// ValidFormats lists all valid output formats.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputEntry writes an entry in the specified format to the writer.
func OutputEntry(format string, e *sqllog.Entry, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(e, out)
	case "pretty":
		return OutputPretty(e, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes an entry as JSON Lines format.
func OutputJSON(e *sqllog.Entry, out io.Writer) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes an entry in human-readable format.
func OutputPretty(e *sqllog.Entry, out io.Writer) error {
	who := e.Meta.Username
	if e.Meta.AppName != "" {
		who += "@" + e.Meta.AppName
	}
	if e.Meta.ClientIP != "" {
		who += " " + e.Meta.ClientIP
	}

	var err error
	if e.HasIndicators() {
		_, err = fmt.Fprintf(out, "[%s] EP%d %s: %s (%.3fms, %d rows, exec %d)\n",
			e.Timestamp, e.Meta.ExecPoint, who, e.Body,
			e.Indicators.ExecTimeMillis, e.Indicators.RowCount, e.Indicators.ExecID)
	} else {
		_, err = fmt.Fprintf(out, "[%s] EP%d %s: %s\n",
			e.Timestamp, e.Meta.ExecPoint, who, e.Body)
	}
	return err
}
