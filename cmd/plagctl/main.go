// Command plagctl compares two documents from the command line, either
// as one-shot subcommands or through an interactive menu, and re-checks
// recorded reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/config"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/loader"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/recheck"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/recorder"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/vault"
)

const (
	exitOK          = 0
	exitFlagged     = 1 // plagiarism detected, or drift on verify
	exitError       = 2
	exitInterrupted = 130
)

const usage = `Usage: plagctl [flags] <command> [args]

Commands:
  compare <a> <b>          common words plus similarity verdict
  common <a> <b>           common words and their counts
  search <word> <a> <b>    occurrences of one word in each document
  score <a> <b>            similarity percentage and verdict
  interactive [<a> <b>]    menu-driven session (default essay1.txt essay2.txt)
  verify <report.json>     re-run a recorded comparison and report drift

Documents are local paths or vault://bucket/key references.

Flags:
`

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli carries what every command needs.
type cli struct {
	cfg    *config.Config
	opts   analysis.Options
	loader *loader.Loader
	record string // report directory, empty when recording is off
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("plagctl", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprint(errOut, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", os.Getenv("PLAG_CONFIG"), "YAML config file")
	threshold := fs.Float64("threshold", 0, "plagiarism threshold percentage (overrides config)")
	minLen := fs.Int("min-length", 0, "shortest word counted (overrides config)")
	recordDir := fs.String("record", "", "write a report file to this directory")
	noColor := fs.Bool("no-color", false, "disable coloured output")

	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if *noColor {
		color.NoColor = true
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitError
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return exitError
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			cfg.Analysis.Threshold = *threshold
		case "min-length":
			cfg.Analysis.MinWordLength = *minLen
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return exitError
	}

	c := &cli{
		cfg:    cfg,
		opts:   cfg.Options(),
		record: *recordDir,
		in:     in,
		out:    out,
		errOut: errOut,
	}
	c.loader = &loader.Loader{
		Format:    loader.Format(cfg.Documents.Format),
		MaxBytes:  cfg.Documents.MaxBytes,
		Tokenizer: c.opts.Tokenizer(),
	}
	if cfg.Storage.Endpoint != "" {
		vc, err := vault.New(ctx, vault.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			fmt.Fprintf(errOut, "WARN: vault disabled: %v\n", err)
		} else {
			c.loader.Vault = vc
		}
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	h, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(errOut, "Error: unknown command %q\n", cmd)
		fs.Usage()
		return exitError
	}
	if len(rest) == 0 && h.defaults != nil {
		rest = h.defaults
	}
	if len(rest) != h.args {
		fmt.Fprintf(errOut, "Error: %s takes %d argument(s), got %d\n", cmd, h.args, len(rest))
		return exitError
	}
	return h.run(ctx, c, rest)
}

// command is one entry of the subcommand dispatch table. defaults, when
// set, stand in for an empty argument list.
type command struct {
	args     int
	run      func(ctx context.Context, c *cli, args []string) int
	defaults []string
}

var commands = map[string]command{
	"compare":     {args: 2, run: withSession(runCompare)},
	"common":      {args: 2, run: withSession(runCommon)},
	"score":       {args: 2, run: withSession(runScore)},
	"search":      {args: 3, run: runSearch},
	"interactive": {args: 2, run: runInteractive, defaults: []string{"essay1.txt", "essay2.txt"}},
	"verify":      {args: 1, run: runVerify},
}

// withSession loads the two documents named by args before calling fn.
func withSession(fn func(c *cli, s *analysis.Session) int) func(context.Context, *cli, []string) int {
	return func(ctx context.Context, c *cli, args []string) int {
		s, err := c.session(ctx, args[0], args[1])
		if err != nil {
			fmt.Fprintf(c.errOut, "Error: %v\n", err)
			return exitError
		}
		return fn(c, s)
	}
}

func (c *cli) session(ctx context.Context, refA, refB string) (*analysis.Session, error) {
	a, err := c.loader.Load(ctx, refA)
	if err != nil {
		return nil, err
	}
	b, err := c.loader.Load(ctx, refB)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(c.out, "Files read successfully!")
	return analysis.NewSession(a, b, c.opts)
}

func runCompare(c *cli, s *analysis.Session) int {
	rep := s.Report()
	printSummary(c.out, rep)
	printCommonWords(c.out, rep.CommonWords)
	printScore(c.out, rep)
	if err := c.writeReport(s); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return exitError
	}
	return verdictCode(rep.Flagged)
}

func runCommon(c *cli, s *analysis.Session) int {
	printCommonWords(c.out, s.CommonWords())
	return exitOK
}

func runScore(c *cli, s *analysis.Session) int {
	rep := s.Report()
	printScore(c.out, rep)
	if err := c.writeReport(s); err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return exitError
	}
	return verdictCode(rep.Flagged)
}

func runSearch(ctx context.Context, c *cli, args []string) int {
	s, err := c.session(ctx, args[1], args[2])
	if err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return exitError
	}
	res, err := s.Lookup(args[0])
	if err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return exitError
	}
	printLookup(c.out, res)
	return exitOK
}

func runVerify(ctx context.Context, c *cli, args []string) int {
	rec, err := recorder.Load(args[0])
	if err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return exitError
	}

	fmt.Fprintf(c.out, "Run ID:      %s\n", rec.RunID)
	fmt.Fprintf(c.out, "Document A:  %s (%s)\n", rec.DocumentA.Name, rec.DocumentA.Ref)
	fmt.Fprintf(c.out, "Document B:  %s (%s)\n", rec.DocumentB.Name, rec.DocumentB.Ref)
	fmt.Fprintf(c.out, "Recorded:    %.2f%% (threshold %.2f%%)\n", rec.Percentage, rec.Threshold)

	res, err := recheck.Run(ctx, rec, recheck.Options{Loader: c.loader})
	if err != nil {
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return exitError
	}

	fmt.Fprintf(c.out, "Rechecked:   %.2f%%\n", res.RecheckPercentage)
	if res.Drift {
		color.New(color.FgRed, color.Bold).Fprintf(c.out, "DRIFT DETECTED: %s\n", res.DriftSummary)
		return exitFlagged
	}
	color.New(color.FgGreen).Fprintln(c.out, "NO DRIFT: recheck matches the recorded report.")
	return exitOK
}

func (c *cli) writeReport(s *analysis.Session) error {
	if c.record == "" {
		return nil
	}
	w, err := recorder.NewWriter(c.record)
	if err != nil {
		return err
	}
	rec := recorder.FromReport(uuid.New().String(), s.Report(), c.opts, absRef(s.A.Name), absRef(s.B.Name))
	if _, err := w.Write(rec); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Report: %s\n", filepath.Join(c.record, rec.RunID+recorder.Suffix))
	return nil
}

// absRef makes local paths absolute so reports stay valid from any
// working directory. Vault refs are returned unchanged.
func absRef(ref string) string {
	if vault.IsURI(ref) {
		return ref
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		return ref
	}
	return abs
}

func verdictCode(flagged bool) int {
	if flagged {
		return exitFlagged
	}
	return exitOK
}
