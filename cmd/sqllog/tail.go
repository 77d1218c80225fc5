package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sqllog/sqllog-go/pkg/sqllog"
)

var (
	// tail flags
	tailFormat    string
	tailEncoding  string
	tailFromStart bool
	tailPoll      bool
)

var tailCmd = &cobra.Command{
	Use:   "tail <file>",
	Short: "Follow a growing sqllog file and print records as they complete",
	Long: `Follow a growing sqllog file in real time.

A record is printed once the next record's header arrives, since only
the next timestamp marks the end of a record.

Examples:
  # Follow new records
  sqllog tail /dm/log/dmsql_host.log

  # Replay the existing content first
  sqllog tail /dm/log/dmsql_host.log --from-start

  # Filesystems without inotify (NFS, some container mounts)
  sqllog tail /dm/log/dmsql_host.log --poll

  # GBK-encoded server logs
  sqllog tail /dm/log/dmsql_host.log --encoding gbk

  # Pipe to jq
  sqllog tail /dm/log/dmsql_host.log | jq 'select(.meta.user == "SYSDBA")'`,
	Args: cobra.ExactArgs(1),
	RunE: runTail,
}

func init() {
	tailCmd.Flags().StringVarP(&tailFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	tailCmd.Flags().StringVar(&tailEncoding, "encoding", "",
		"Source encoding: utf-8, gbk, gb18030")
	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false,
		"Replay existing file content before following")
	tailCmd.Flags().BoolVar(&tailPoll, "poll", false,
		"Poll for file changes instead of using inotify")

	rootCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, args []string) error {
	if !ValidFormats[tailFormat] {
		return fmt.Errorf("unknown format: %s", tailFormat)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wopts := []sqllog.WatchOption{sqllog.WithWatchLogger(newLogger())}
	enc := cfg.Encoding
	if tailEncoding != "" {
		enc = tailEncoding
	}
	if enc != "" {
		wopts = append(wopts, sqllog.WithWatchEncoding(enc))
	}
	if tailFromStart {
		wopts = append(wopts, sqllog.WithWatchFromStart())
	}
	if tailPoll {
		wopts = append(wopts, sqllog.WithWatchPolling())
	}

	w, err := sqllog.NewWatcher(args[0], wopts...)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	entries, errs, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-entries:
			if !ok {
				return nil
			}
			if err := OutputEntry(tailFormat, e, os.Stdout); err != nil {
				return err
			}
		case werr, ok := <-errs:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "Warning:", werr)
		}
	}
}
