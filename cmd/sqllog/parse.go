package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqllog/sqllog-go/internal/encoding"
	"github.com/sqllog/sqllog-go/pkg/sqllog"
)

var (
	// parse flags
	parseFormat     string
	parseEncoding   string
	parseParallel   int
	parseErrorsOnly bool
	parseStrict     bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a sqllog file and print its records",
	Long: `Parse a whole sqllog file and print its records.

Records are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq. Malformed records are
reported on stderr and do not stop the run.

Examples:
  # Print all records as JSON lines
  sqllog parse dmsql_host_20250109.log

  # Human-readable output
  sqllog parse dmsql_host_20250109.log --format pretty

  # Summary only
  sqllog parse dmsql_host_20250109.log --format stats

  # Parse a GBK-encoded log on four workers
  sqllog parse dmsql.log --encoding gbk --parallel 4

  # Show only what failed to parse
  sqllog parse dmsql.log --errors-only`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty, stats")
	parseCmd.Flags().StringVar(&parseEncoding, "encoding", "",
		"Source encoding: utf-8, gbk, gb18030")
	parseCmd.Flags().IntVar(&parseParallel, "parallel", 0,
		"Parse records on N goroutines (0 = config default)")
	parseCmd.Flags().BoolVar(&parseErrorsOnly, "errors-only", false,
		"Print only malformed records")
	parseCmd.Flags().BoolVar(&parseStrict, "strict", false,
		"Reject files that are not valid UTF-8 instead of substituting")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]

	if parseFormat != "stats" && !ValidFormats[parseFormat] {
		return fmt.Errorf("unknown format: %s", parseFormat)
	}

	if parseStrict {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := encoding.Validate(data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	parallel := parseParallel
	if parallel == 0 {
		parallel = cfg.Parallel
	}
	opts := baseOptions(parseEncoding)
	if parallel > 1 {
		opts = append(opts, sqllog.WithParallelism(parallel))
	}

	res, err := sqllog.ParseFile(path, opts...)
	if err != nil {
		return err
	}

	if parseFormat == "stats" {
		return printStats(res)
	}

	for _, perr := range res.Errors {
		fmt.Fprintln(os.Stderr, "Warning:", perr)
	}
	if parseErrorsOnly {
		return nil
	}
	for _, e := range res.Entries {
		if err := OutputEntry(parseFormat, e, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}

func printStats(res *sqllog.FileResult) error {
	var withInd int
	var totalMs float64
	for _, e := range res.Entries {
		if e.HasIndicators() {
			withInd++
			totalMs += float64(e.Indicators.ExecTimeMillis)
		}
	}
	fmt.Printf("records:         %d\n", len(res.Entries))
	fmt.Printf("malformed:       %d\n", len(res.Errors))
	fmt.Printf("leading lines:   %d\n", len(res.Leading))
	fmt.Printf("with indicators: %d\n", withInd)
	fmt.Printf("total exec time: %.3f ms\n", totalMs)
	return nil
}
