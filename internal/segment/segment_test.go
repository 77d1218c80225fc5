package segment

import (
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hdr1 = "2025-01-09 20:06:46.276 (EP[0] sess:0x1 thrd:2 user:SYSDBA trxid:3 stmt:0x4 appname:disql) SELECT 1;"
	hdr2 = "2025-01-09 20:06:47.001 (EP[0] sess:0x1 thrd:2 user:SYSDBA trxid:3 stmt:0x4 appname:disql) SELECT 2;"
	hdr3 = "2025-01-09 20:06:48.900 (EP[1] sess:0x9 thrd:7 user:SYSDBA trxid:8 stmt:0x5 appname:) COMMIT;"
)

// chunkReader returns at most one chunk per Read call, cycling through
// the given sizes.
type chunkReader struct {
	data  []byte
	sizes []int
	i     int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.sizes[c.i%len(c.sizes)]
	c.i++
	if n > len(c.data) {
		n = len(c.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

// errReader yields its data, then a non-EOF error.
type errReader struct {
	data []byte
	err  error
}

func (e *errReader) Read(p []byte) (int, error) {
	if len(e.data) == 0 {
		return 0, e.err
	}
	n := copy(p, e.data)
	e.data = e.data[n:]
	return n, nil
}

func collect(t *testing.T, r io.Reader) (recs []string, lead string, err error) {
	t.Helper()
	sc := NewScanner(r, 0)
	for sc.Scan() {
		recs = append(recs, string(sc.Bytes()))
	}
	return recs, string(sc.LeadingText()), sc.Err()
}

func TestScannerSplitsRecords(t *testing.T) {
	t.Parallel()

	input := hdr1 + "\n" + hdr2 + "\nFROM dual\nWHERE 1 = 1;\n" + hdr3 + "\n"
	recs, lead, err := collect(t, strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, lead)
	require.Len(t, recs, 3)
	assert.Equal(t, hdr1+"\n", recs[0])
	assert.Equal(t, hdr2+"\nFROM dual\nWHERE 1 = 1;\n", recs[1])
	assert.Equal(t, hdr3+"\n", recs[2])
}

func TestScannerNoTrailingNewline(t *testing.T) {
	t.Parallel()

	recs, _, err := collect(t, strings.NewReader(hdr1))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, hdr1, recs[0])
}

func TestScannerLeadingText(t *testing.T) {
	t.Parallel()

	input := "startup banner\nnot a record\n" + hdr1 + "\n" + hdr2 + "\n"
	recs, lead, err := collect(t, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "startup banner\nnot a record\n", lead)
	require.Len(t, recs, 2)
	assert.Equal(t, hdr1+"\n", recs[0])
}

func TestScannerNoBoundaryAtAll(t *testing.T) {
	t.Parallel()

	recs, lead, err := collect(t, strings.NewReader("just noise\nmore noise"))
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, "just noise\nmore noise", lead)
}

func TestScannerEmptyInput(t *testing.T) {
	t.Parallel()

	recs, lead, err := collect(t, strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Empty(t, lead)
}

// A body line that begins with a near-timestamp must stay inside the
// current record.
func TestScannerRejectsNearTimestamps(t *testing.T) {
	t.Parallel()

	input := hdr1 + "\n" +
		"2025-01-09 20:06:46.27 short by one\n" +
		"2025-01-09T20:06:46.276 wrong separator\n" +
		hdr2 + "\n"
	recs, _, err := collect(t, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, hdr1+"\n2025-01-09 20:06:46.27 short by one\n2025-01-09T20:06:46.276 wrong separator\n", recs[0])
}

func TestScannerReadErrorIsTerminal(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk gone")
	sc := NewScanner(&errReader{data: []byte(hdr1 + "\n" + hdr2 + "\n"), err: boom}, 0)

	var n int
	for sc.Scan() {
		n++
	}
	assert.Equal(t, 1, n, "only the record confirmed before the failure is emitted")
	require.ErrorIs(t, sc.Err(), boom)
	assert.False(t, sc.Scan(), "scanner must not retry after a read error")
	require.ErrorIs(t, sc.Err(), boom)
}

// Segmentation must not depend on how the stream is chunked, including
// chunk sizes that split a timestamp across reads.
func TestScannerChunkInvariance(t *testing.T) {
	t.Parallel()

	input := "garbage prefix\n" + hdr1 + "\nline two\n" + hdr2 + "\n" + hdr3 + "\ntail body"
	want, wantLead, err := collect(t, strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, want, 3)

	for _, sizes := range [][]int{{1}, {2}, {3}, {7}, {23}, {22, 1}, {64}, {5, 31, 2}} {
		got, lead, err := collect(t, &chunkReader{data: []byte(input), sizes: sizes})
		require.NoError(t, err, "sizes %v", sizes)
		assert.Equal(t, want, got, "sizes %v", sizes)
		assert.Equal(t, wantLead, lead, "sizes %v", sizes)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		sizes := make([]int, 1+rng.Intn(8))
		for j := range sizes {
			sizes[j] = 1 + rng.Intn(40)
		}
		got, lead, err := collect(t, &chunkReader{data: []byte(input), sizes: sizes})
		require.NoError(t, err, "sizes %v", sizes)
		assert.Equal(t, want, got, "sizes %v", sizes)
		assert.Equal(t, wantLead, lead, "sizes %v", sizes)
	}
}

func TestScannerTinyBuffer(t *testing.T) {
	t.Parallel()

	input := hdr1 + "\n" + hdr2 + "\n"
	sc := NewScanner(strings.NewReader(input), 1)
	var recs []string
	for sc.Scan() {
		recs = append(recs, string(sc.Bytes()))
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{hdr1 + "\n", hdr2 + "\n"}, recs)
}
