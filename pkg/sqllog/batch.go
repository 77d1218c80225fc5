package sqllog

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sqllog/sqllog-go/internal/encoding"
	"github.com/sqllog/sqllog-go/internal/record"
	"github.com/sqllog/sqllog-go/internal/segment"
	"github.com/sqllog/sqllog-go/pkg/sqllog/entry"
)

// FileResult is the outcome of parsing a whole file eagerly. Entries and
// Errors each preserve the file order of the records they came from.
type FileResult struct {
	// Entries holds the successfully parsed records.
	Entries []*entry.Entry

	// Errors holds one error per malformed record.
	Errors []error

	// Leading holds the lines found before the first record boundary,
	// usually server banner output. Empty for well-formed files.
	Leading []string
}

// ParseFile reads and parses a whole sqllog file. Malformed records land
// in FileResult.Errors without stopping the run. The returned error is
// non-nil only for terminal failures (open or read); the partial result
// accumulated up to that point is still returned alongside it.
//
// With WithParallelism(n > 1) the field-parsing stage runs on n
// goroutines; segmentation stays sequential and the result keeps file
// order.
func ParseFile(path string, opts ...Option) (*FileResult, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sqllog file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoded, err := encoding.NewReader(f, cfg.encoding)
	if err != nil {
		return nil, err
	}

	sc := segment.NewScanner(decoded, cfg.bufferSize)
	var raws [][]byte
	for sc.Scan() {
		raw := make([]byte, len(sc.Bytes()))
		copy(raw, sc.Bytes())
		raws = append(raws, raw)
	}

	res := &FileResult{}
	if lead := sc.LeadingText(); len(lead) > 0 {
		res.Leading = strings.Split(strings.TrimRight(string(lead), "\n"), "\n")
	}
	res.Entries, res.Errors = parseAll(raws, cfg.parallelism)

	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("reading sqllog file: %w", err)
	}
	return res, nil
}

// parseAll runs the field parser over every raw record, on workers
// goroutines when workers > 1. Outcomes are written into an indexed
// slice so that the output keeps input order whatever the scheduling.
func parseAll(raws [][]byte, workers int) ([]*entry.Entry, []error) {
	type outcome struct {
		e   *entry.Entry
		err error
	}
	outs := make([]outcome, len(raws))

	if workers <= 1 || len(raws) < 2 {
		for i, raw := range raws {
			e, err := record.Parse(raw)
			outs[i] = outcome{e: e, err: err}
		}
	} else {
		if workers > len(raws) {
			workers = len(raws)
		}
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					e, err := record.Parse(raws[i])
					outs[i] = outcome{e: e, err: err}
				}
			}()
		}
		for i := range raws {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	var entries []*entry.Entry
	var errs []error
	for _, o := range outs {
		if o.err != nil {
			errs = append(errs, o.err)
			continue
		}
		entries = append(entries, o.e)
	}
	return entries, errs
}
