package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqllog/sqllog-go/pkg/sqllog"
	"github.com/sqllog/sqllog-go/pkg/sqllog/match"
)

var (
	// grep flags
	grepFormat    string
	grepEncoding  string
	grepPositions bool
)

var grepCmd = &cobra.Command{
	Use:   "grep <file> <pattern>...",
	Short: "Print records whose SQL body contains any of the patterns",
	Long: `Print records whose SQL body contains any of the given patterns.

Patterns are literal strings, matched simultaneously with an Aho-Corasick
automaton, so many patterns cost one pass over each body.

Examples:
  sqllog grep dmsql_host.log "UPDATE accounts" "DELETE FROM accounts"
  sqllog grep dmsql_host.log DROP TRUNCATE --positions`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGrep,
}

func init() {
	grepCmd.Flags().StringVarP(&grepFormat, "format", "f", "pretty",
		"Output format: jsonl, pretty")
	grepCmd.Flags().StringVar(&grepEncoding, "encoding", "",
		"Source encoding: utf-8, gbk, gb18030")
	grepCmd.Flags().BoolVar(&grepPositions, "positions", false,
		"Also print each pattern's first match offset")

	rootCmd.AddCommand(grepCmd)
}

func runGrep(cmd *cobra.Command, args []string) error {
	if !ValidFormats[grepFormat] {
		return fmt.Errorf("unknown format: %s", grepFormat)
	}

	m, err := match.New(args[1:])
	if err != nil {
		return err
	}

	r, err := sqllog.Open(args[0], baseOptions(grepEncoding)...)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Warning:", err)
			continue
		}
		if !m.MatchesAny(e.Body) {
			continue
		}
		if err := OutputEntry(grepFormat, e, os.Stdout); err != nil {
			return err
		}
		if grepPositions {
			printPositions(m, e.Body)
		}
	}
}

func printPositions(m *match.Matcher, body string) {
	for i, pos := range m.FirstPositions(body) {
		if pos == match.NotFound {
			continue
		}
		fmt.Printf("  %q at %d\n", m.Patterns()[i], pos)
	}
}
