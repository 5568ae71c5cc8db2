package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/goccy/go-json"

	filepulse "github.com/streamthoughts/kafka-connect-file-pulse-sub000"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/config"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/filter"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/internal/log"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/jsonschema"
	"github.com/streamthoughts/kafka-connect-file-pulse-sub000/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	var err error
	switch args[0] {
	case "read":
		err = readCmd(ctx, args[1:], stdin, stdout, stderr)
	case "parse":
		err = parseCmd(args[1:], stdout)
	default:
		usage(stderr)
		return 2
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintf(stderr, "filepulse: %v\n", err)
		return 1
	}
	return 0
}

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, "filepulse CLI\n\nUsage:\n  filepulse read [-config pipeline.yaml] [-format json|yaml|csv|xml|line] [-schema] [-workers n] [file...]\n  filepulse parse text...\n\nNotes:\n  - read uses stdin when no file is given and writes one JSON record per line.\n  - -schema prints the JSON Schema unifying every output record instead.")
}

func readCmd(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var cfgPath, format, level string
	var schema bool
	var workers int
	fs.StringVar(&cfgPath, "config", "", "pipeline file")
	fs.StringVar(&format, "format", "", "record format, overrides the pipeline file")
	fs.BoolVar(&schema, "schema", false, "print the unified schema of the output records")
	fs.IntVar(&workers, "workers", 0, "records processed concurrently, overrides the pipeline file")
	fs.StringVar(&level, "log-level", "", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := &config.Pipeline{}
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return err
		}
	}
	if format != "" {
		cfg.Reader.Format = format
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if level == "" {
		level = cfg.Log.Level
	}
	logger := log.New(log.ParseLevel(level))
	defer func() { _ = logger.Sync() }()

	reader, pipe, err := cfg.Build(logger, nil)
	if err != nil {
		return err
	}

	var recs []*filepulse.TypedStruct
	collect := func(r *filepulse.TypedStruct) error {
		recs = append(recs, r)
		return nil
	}
	if fs.NArg() == 0 {
		if err := reader.Read(ctx, stdin, collect); err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
	}
	for _, name := range fs.Args() {
		if err := readFile(ctx, reader, name, collect); err != nil {
			return err
		}
		logger.Debug("file read", log.String("file", name), log.Int("records", len(recs)))
	}

	out, err := pipe.ProcessAll(ctx, recs, cfg.Workers)
	if err != nil {
		return err
	}
	logger.Info("records processed", log.Int("in", len(recs)), log.Int("out", len(out)))

	if schema {
		return writeSchema(stdout, out)
	}
	enc := json.NewEncoder(stdout)
	for _, r := range out {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func readFile(ctx context.Context, reader source.Reader, name string, emit source.EmitFunc) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := reader.Read(ctx, f, emit); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func writeSchema(w io.Writer, recs []*filepulse.TypedStruct) error {
	s, err := filter.Schema(recs)
	if err != nil {
		return err
	}
	doc, err := jsonschema.Document(s)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func parseCmd(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	for _, a := range args {
		v := filepulse.Parse(a)
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\n", v.Type(), b)
	}
	return nil
}
