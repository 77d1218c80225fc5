package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqllog/sqllog-go/pkg/sqllog/entry"
)

const (
	metaFull   = "(EP[0] sess:0x7f8b2c011f60 thrd:1244 user:SYSDBA trxid:4322 stmt:0x7f8b2c05e1c0 appname:disql)"
	metaWithIP = "(EP[3] sess:0x1 thrd:2 user:SYSDBA trxid:3 stmt:0x4 appname: ip:::ffff:10.0.0.9)"
)

func TestParseSingleLineWithIndicators(t *testing.T) {
	t.Parallel()

	raw := "2025-01-09 20:06:46.276 " + metaFull +
		" SELECT 1; EXECTIME: 1.477(ms) ROWCOUNT: 1(rows) EXEC_ID: 1975.\n"
	e, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-09 20:06:46.276", e.Timestamp)
	assert.Len(t, e.Timestamp, entry.TimestampLen)
	assert.Equal(t, uint8(0), e.Meta.ExecPoint)
	assert.Equal(t, "0x7f8b2c011f60", e.Meta.SessionID)
	assert.Equal(t, "1244", e.Meta.ThreadID)
	assert.Equal(t, "SYSDBA", e.Meta.Username)
	assert.Equal(t, "4322", e.Meta.TrxID)
	assert.Equal(t, "0x7f8b2c05e1c0", e.Meta.StatementID)
	assert.Equal(t, "disql", e.Meta.AppName)
	assert.Empty(t, e.Meta.ClientIP)

	assert.Equal(t, "SELECT 1;", e.Body)
	require.True(t, e.HasIndicators())
	assert.InDelta(t, 1.477, float64(e.Indicators.ExecTimeMillis), 1e-4)
	assert.Equal(t, uint32(1), e.Indicators.RowCount)
	assert.Equal(t, int64(1975), e.Indicators.ExecID)
}

func TestParseMultiLineBody(t *testing.T) {
	t.Parallel()

	raw := "2025-01-09 20:06:46.276 " + metaFull + " SELECT *\n" +
		"FROM users\n" +
		"WHERE id = 1;\n"
	e, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "SELECT *\nFROM users\nWHERE id = 1;", e.Body)
	assert.False(t, e.HasIndicators())
}

func TestParseIndicatorsOnContinuationLine(t *testing.T) {
	t.Parallel()

	raw := "2025-01-09 20:06:46.276 " + metaFull + " UPDATE t SET v = 1\n" +
		"WHERE k = 2; EXECTIME: 0.093(ms) ROWCOUNT: 4(rows) EXEC_ID: 88.\n"
	e, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET v = 1\nWHERE k = 2;", e.Body)
	require.True(t, e.HasIndicators())
	assert.Equal(t, uint32(4), e.Indicators.RowCount)
	assert.Equal(t, int64(88), e.Indicators.ExecID)
}

func TestParseClientIP(t *testing.T) {
	t.Parallel()

	raw := "2025-01-09 20:06:46.276 " + metaWithIP + " COMMIT;\n"
	e, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, uint8(3), e.Meta.ExecPoint)
	assert.Empty(t, e.Meta.AppName)
	assert.Equal(t, "10.0.0.9", e.Meta.ClientIP)
	assert.Equal(t, "COMMIT;", e.Body)
}

func TestParseAppnameContinuation(t *testing.T) {
	t.Parallel()

	raw := "2025-01-09 20:06:46.276 (EP[0] sess:0x1 thrd:2 user:U trxid:3 stmt:0x4 appname: myapp) SELECT 1;\n"
	e, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "myapp", e.Meta.AppName)
	assert.Empty(t, e.Meta.ClientIP)
}

func TestParseIndicatorsAtomicity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tail string
	}{
		{"keyword missing", " SELECT 1; ROWCOUNT: 1(rows) EXEC_ID: 2."},
		{"terminator missing", " SELECT 1; EXECTIME: 1.2 ROWCOUNT: 1(rows) EXEC_ID: 2."},
		{"non numeric exectime", " SELECT 1; EXECTIME: abc(ms) ROWCOUNT: 1(rows) EXEC_ID: 2."},
		{"negative exectime", " SELECT 1; EXECTIME: -1(ms) ROWCOUNT: 1(rows) EXEC_ID: 2."},
		{"negative rowcount", " SELECT 1; EXECTIME: 1.2(ms) ROWCOUNT: -1(rows) EXEC_ID: 2."},
		{"non numeric exec id", " SELECT 1; EXECTIME: 1.2(ms) ROWCOUNT: 1(rows) EXEC_ID: x."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := "2025-01-09 20:06:46.276 " + metaFull + tt.tail + "\n"
			e, err := Parse([]byte(raw))
			require.NoError(t, err)
			assert.False(t, e.HasIndicators(), "partial indicators must never surface")
			assert.Equal(t, tt.tail[1:], e.Body, "body must stay untruncated")
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	t.Run("not a header", func(t *testing.T) {
		t.Parallel()
		_, err := Parse([]byte("WHERE id = 1;\n"))
		var e *entry.InvalidHeaderError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "WHERE id = 1;", e.Raw)
	})

	t.Run("too short", func(t *testing.T) {
		t.Parallel()
		_, err := Parse([]byte("2025-01-09 20:06:46.276\n"))
		var e *entry.LineTooShortError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 23, e.Length)
	})

	t.Run("double space in meta", func(t *testing.T) {
		t.Parallel()
		_, err := Parse([]byte("2025-01-09 20:06:46.276 (EP[0]  sess:0x1 thrd:2 user:U trxid:3 stmt:0x4 appname:) X\n"))
		var e *entry.InvalidHeaderError
		require.ErrorAs(t, err, &e)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := Parse(nil)
		assert.ErrorIs(t, err, entry.ErrEmptyInput)
		_, err = Parse([]byte("\n"))
		assert.ErrorIs(t, err, entry.ErrEmptyInput)
	})
}

// parseMeta error taxonomy below the header predicate's reach.
func TestParseMetaErrors(t *testing.T) {
	t.Parallel()

	t.Run("field count", func(t *testing.T) {
		t.Parallel()
		_, err := parseMeta("EP[0] sess:1 thrd:2")
		var e *entry.MetaFieldCountError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 3, e.Count)
	})

	t.Run("ep format", func(t *testing.T) {
		t.Parallel()
		_, err := parseMeta("EP(0) sess:1 thrd:2 user:U trxid:3 stmt:4 appname:")
		var e *entry.ExecPointFormatError
		require.ErrorAs(t, err, &e)
	})

	t.Run("ep out of range", func(t *testing.T) {
		t.Parallel()
		_, err := parseMeta("EP[256] sess:1 thrd:2 user:U trxid:3 stmt:4 appname:")
		var e *entry.ExecPointParseError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "256", e.Value)
	})

	t.Run("wrong marker", func(t *testing.T) {
		t.Parallel()
		_, err := parseMeta("EP[0] sess:1 thrd:2 user:U trxid:3 stmt:4 app:x")
		var e *entry.FieldFormatError
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "appname:", e.Expected)
	})

	t.Run("bad ip marker", func(t *testing.T) {
		t.Parallel()
		_, err := parseMeta("EP[0] sess:1 thrd:2 user:U trxid:3 stmt:4 appname: ip:1.2.3.4")
		var e *entry.FieldFormatError
		require.ErrorAs(t, err, &e)
	})
}

func TestParseIndicatorsReversedOrder(t *testing.T) {
	t.Parallel()

	// Keywords may appear in any order inside the scan window.
	body := "SELECT 1; EXEC_ID: 7. ROWCOUNT: 2(rows) EXECTIME: 0.5(ms)"
	ind, cut, err := parseIndicators(body)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ind.ExecID)
	assert.Equal(t, uint32(2), ind.RowCount)
	assert.InDelta(t, 0.5, float64(ind.ExecTimeMillis), 1e-6)
	assert.Equal(t, "SELECT 1; ", body[:cut])
}

func TestParseKeywordInBodyText(t *testing.T) {
	t.Parallel()

	// A keyword mentioned inside the SQL text must not confuse the
	// backward scan; the rightmost occurrences win.
	body := "INSERT INTO audit(msg) VALUES ('EXEC_ID: fake.'); " +
		"EXECTIME: 2.0(ms) ROWCOUNT: 1(rows) EXEC_ID: 42."
	ind, cut, err := parseIndicators(body)
	require.NoError(t, err)
	assert.Equal(t, int64(42), ind.ExecID)
	assert.Equal(t, "INSERT INTO audit(msg) VALUES ('EXEC_ID: fake.'); ", body[:cut])
}

func FuzzParse(f *testing.F) {
	f.Add([]byte("2025-01-09 20:06:46.276 " + metaFull + " SELECT 1; EXECTIME: 1.477(ms) ROWCOUNT: 1(rows) EXEC_ID: 1975.\n"))
	f.Add([]byte("2025-01-09 20:06:46.276 " + metaWithIP + " COMMIT;\n"))
	f.Add([]byte("garbage"))
	f.Add([]byte(""))
	f.Fuzz(func(t *testing.T, raw []byte) {
		e, err := Parse(raw)
		if err == nil && e == nil {
			t.Fatal("nil entry without error")
		}
	})
}
