// Command datagen generates synthetic data from a template file, a schema
// file or a saved template.
//
//	datagen -template customers.csv -rows 1000 -format csv -out customers.csv
//	datagen -schema schema.json -rows 50000 -format json -out data.json -compress
//	datagen -template customers.xlsx -infer-only
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/JonMunkholm/DataForge/internal/application"
	"github.com/JonMunkholm/DataForge/internal/config"
	"github.com/JonMunkholm/DataForge/internal/core"
	"github.com/JonMunkholm/DataForge/internal/export"
	"github.com/JonMunkholm/DataForge/internal/logging"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Overload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	template  string
	schema    string
	saved     string
	rows      int
	format    string
	out       string
	compress  bool
	inferOnly bool
	verbose   bool
	seed      uint64
	seeded    bool
}

var errUsage = errors.New("usage")

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("datagen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.template, "template", "", "CSV, XLS or XLSX file to infer the schema from")
	fs.StringVar(&o.schema, "schema", "", `JSON schema file: [{"name":"email","type":"email"}, ...]`)
	fs.StringVar(&o.saved, "saved", "", "ID of a template in the configured template store")
	fs.IntVar(&o.rows, "rows", 100, "number of rows to generate")
	fs.StringVar(&o.format, "format", "json", "output format: json, csv or xml")
	fs.StringVar(&o.out, "out", "-", "output file, - for stdout")
	fs.BoolVar(&o.compress, "compress", false, "wrap the output in an lz4 frame")
	fs.BoolVar(&o.inferOnly, "infer-only", false, "print the inferred schema instead of generating data")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.Uint64Var(&o.seed, "seed", 0, "seed for reproducible output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			o.seeded = true
		}
	})

	sources := 0
	for _, s := range []string{o.template, o.schema, o.saved} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		fmt.Fprintln(stderr, "exactly one of -template, -schema or -saved is required")
		fs.Usage()
		return nil, errUsage
	}
	if o.inferOnly && o.template == "" {
		fmt.Fprintln(stderr, "-infer-only requires -template")
		return nil, errUsage
	}
	return o, nil
}

// ui writes colored status lines to stderr so stdout stays clean for data.
type ui struct {
	w    io.Writer
	ok   *color.Color
	info *color.Color
	err  *color.Color
}

func newUI(w io.Writer) *ui {
	return &ui{
		w:    w,
		ok:   color.New(color.FgGreen),
		info: color.New(color.FgCyan),
		err:  color.New(color.FgRed, color.Bold),
	}
}

func (u *ui) status(format string, args ...any) {
	u.info.Fprintf(u.w, format+"\n", args...)
}

func (u *ui) success(format string, args ...any) {
	u.ok.Fprintf(u.w, format+"\n", args...)
}

func (u *ui) fail(err error) {
	msg := err.Error()
	if core.IsUserFacing(err) {
		msg = core.FormatUserError(err) + "\n  " + err.Error()
	}
	u.err.Fprintf(u.w, "error: %s\n", msg)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}
	out := newUI(stderr)

	cfg, err := config.Load()
	if err != nil {
		out.fail(err)
		return 1
	}
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logging.Setup(level, cfg.Logging.Format, logging.WithWriter(stderr))

	appOpts := []application.Option{application.WithoutAI()}
	if o.seeded {
		appOpts = append(appOpts, application.WithSeed(o.seed))
	}
	app, err := application.New(ctx, cfg, appOpts...)
	if err != nil {
		out.fail(err)
		return 1
	}
	defer app.Close(context.Background())

	fields, err := loadFields(ctx, app.Service, o)
	if err != nil {
		out.fail(err)
		return 1
	}
	out.status("schema: %d fields (%s)", len(fields), describe(fields))

	if o.inferOnly {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fields); err != nil {
			out.fail(err)
			return 1
		}
		return 0
	}

	format, err := export.ParseFormat(o.format)
	if err != nil {
		out.fail(err)
		return 1
	}

	start := time.Now()
	path, err := writeOutput(ctx, app.Service, fields, o, format, stdout)
	if err != nil {
		out.fail(err)
		return 1
	}
	out.success("generated %d rows as %s in %s -> %s", o.rows, format, time.Since(start).Round(time.Millisecond), path)
	return 0
}

// loadFields resolves the schema from whichever source flag was given.
func loadFields(ctx context.Context, svc *core.Service, o *options) ([]core.Field, error) {
	switch {
	case o.template != "":
		data, err := os.ReadFile(o.template)
		if err != nil {
			return nil, fmt.Errorf("read template: %w", err)
		}
		return svc.ParseTemplate(ctx, data, o.template)
	case o.schema != "":
		data, err := os.ReadFile(o.schema)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		return parseSchema(data)
	default:
		tmpl, err := svc.GetTemplate(ctx, o.saved)
		if err != nil {
			return nil, err
		}
		return tmpl.Fields, nil
	}
}

// parseSchema accepts a bare field array or an object with a "fields" key,
// such as a template saved from the API.
func parseSchema(data []byte) ([]core.Field, error) {
	var suggestions []core.FieldSuggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		var wrapped struct {
			Fields []core.FieldSuggestion `json:"fields"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("invalid request body: schema file: %w", err)
		}
		suggestions = wrapped.Fields
	}
	return core.FieldsFromSuggestions(suggestions)
}

// writeOutput streams the export to -out (or stdout), optionally through lz4.
// It returns the path written.
func writeOutput(ctx context.Context, svc *core.Service, fields []core.Field, o *options, format export.Format, stdout io.Writer) (string, error) {
	path := o.out
	var dst io.Writer = stdout
	var file *os.File

	if path != "" && path != "-" {
		if o.compress && !strings.HasSuffix(path, export.CompressedExtension) {
			path += export.CompressedExtension
		}
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("create output: %w", err)
		}
		file = f
		dst = f
	} else {
		path = "stdout"
	}

	var zw io.WriteCloser
	if o.compress {
		w, err := export.NewLZ4Writer(dst)
		if err != nil {
			closeQuietly(file)
			return "", err
		}
		zw = w
		dst = w
	}

	bw := bufio.NewWriterSize(dst, 64<<10)
	err := svc.Export(ctx, fields, o.rows, format, bw)
	if err == nil {
		err = bw.Flush()
	}
	if zw != nil {
		if cerr := zw.Close(); err == nil {
			err = cerr
		}
	}
	if file != nil {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil && file != nil {
		os.Remove(path)
	}
	return path, err
}

func closeQuietly(f *os.File) {
	if f != nil {
		f.Close()
	}
}

func describe(fields []core.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + ":" + string(f.Type)
	}
	return strings.Join(parts, ", ")
}
