/*
main.go - Command-line batch evaluator

PURPOSE:
  Evaluates one account document without running the server. Prints the
  account summary. The completion marker is always the last line on
  stdout, including when the input could not be read.

COMMAND-LINE FLAGS:
  -f          Account JSON file (default: read stdin)
  -json       Print the summary as JSON instead of text
  -log-level  zap level for diagnostics on stderr (default: warn)

EXIT STATUS:
  0  Evaluation ran (rejections and aborted batches included)
  1  Input unreadable or not a JSON object
  2  Bad flags

EXAMPLES:
  ./evaluate -f account.json
  cat account.json | ./evaluate -json
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/warp/batch-ledger/ledger"
	"github.com/warp/batch-ledger/report"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("f", "", "account JSON file (default: stdin)")
	asJSON := fs.Bool("json", false, "print the summary as JSON")
	level := fs.String("log-level", "warn", "log level for stderr diagnostics")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	defer report.RenderCompleted(stdout)

	logger, err := report.NewLoggerTo(stderr, *level, os.Getenv("APP_ENV"))
	if err != nil {
		fmt.Fprintf(stderr, "evaluate: %v\n", err)
		return 2
	}
	defer logger.Sync()

	input := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintf(stderr, "evaluate: %v\n", err)
			return 1
		}
		defer f.Close()
		input = f
	}

	var account ledger.AccountDescriptor
	if err := json.NewDecoder(input).Decode(&account); err != nil {
		logger.Error("unreadable account document", zap.Error(err))
		fmt.Fprintf(stderr, "evaluate: %v\n", err)
		return 1
	}

	evaluator := ledger.NewEvaluator(report.NewLogObserver(logger))
	summary := evaluator.Evaluate(context.Background(), account)

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			fmt.Fprintf(stderr, "evaluate: %v\n", err)
			return 1
		}
		return 0
	}

	if err := report.Render(stdout, summary); err != nil {
		fmt.Fprintf(stderr, "evaluate: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout)
	return 0
}
