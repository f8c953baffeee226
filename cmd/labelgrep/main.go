// Command labelgrep searches labeled document files with a label pattern.
//
//	labelgrep --schema schema.toml --pattern '[?Token{pos="ADJ"}] Token{pos="NOUN"}' 'docs/**/*.yaml'
//
// Each match is printed as file:[begin, end) text. The exit status is 0 when
// something matched, 1 when nothing did and 2 on error.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"

	"github.com/urfave/cli/v2"

	"github.com/coregx/corelabel"
	"github.com/coregx/corelabel/docfile"
	"github.com/coregx/corelabel/label"
	"github.com/coregx/corelabel/labeler"
)

// Version is the labelgrep version
var Version = "0.1.0"

const (
	exitNoMatch = 1
	exitError   = 2
)

// tokenType is the type name the --tokenize stage emits
const tokenType = "Token"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line args and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).RunContext(ctx, args)
	if err == nil {
		return 0
	}
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		if msg := exit.Error(); msg != "" {
			fmt.Fprintln(stderr, "labelgrep:", msg)
		}
		return exit.ExitCode()
	}
	fmt.Fprintln(stderr, "labelgrep:", err)
	return exitError
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "labelgrep",
		Usage:     "Search labeled documents with a label pattern",
		UsageText: "labelgrep [options] files-or-globs...",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		// Exit codes are mapped by run, never by os.Exit inside the app.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schema",
				Aliases: []string{"s"},
				Usage:   "TOML schema declaring label types, dictionaries and rules",
			},
			&cli.StringFlag{
				Name:     "pattern",
				Aliases:  []string{"e"},
				Usage:    "Label pattern to search for",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "tokenize",
				Aliases: []string{"t"},
				Usage:   "Split document text into " + tokenType + " labels before searching",
			},
			&cli.StringFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Usage:   "Print the span of this named group instead of the whole match",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log progress to stderr",
			},
		},
		Action: func(c *cli.Context) error {
			return grep(c, stdout, stderr)
		},
	}
}

// searcher holds what every document is searched with.
type searcher struct {
	reg      *label.Registry
	pattern  *corelabel.Pattern
	group    string
	pipeline *labeler.Pipeline
	logger   *slog.Logger
}

func grep(c *cli.Context, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	s, err := newSearcher(c, logger)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	if c.NArg() == 0 {
		return cli.Exit("no input files", exitError)
	}
	paths, err := docfile.Glob(c.Args().Slice())
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	found := 0
	for _, path := range paths {
		n, err := s.searchFile(c.Context, stdout, path)
		if err != nil {
			return cli.Exit(err.Error(), exitError)
		}
		found += n
	}
	logger.Debug("search done", slog.Int("files", len(paths)), slog.Int("matches", found))
	if found == 0 {
		return cli.Exit("", exitNoMatch)
	}
	return nil
}

func newSearcher(c *cli.Context, logger *slog.Logger) (*searcher, error) {
	reg := label.NewRegistry()
	var schema *docfile.Schema
	if path := c.String("schema"); path != "" {
		var err error
		if schema, err = docfile.LoadSchema(path); err != nil {
			return nil, err
		}
		if err := schema.Register(reg); err != nil {
			return nil, err
		}
		logger.Debug("schema loaded", slog.String("path", path), slog.Int("types", len(reg.Types())))
	}

	var stages []labeler.Labeler
	if c.Bool("tokenize") {
		if _, taken := reg.Resolve(tokenType); taken {
			return nil, fmt.Errorf("--tokenize: type %s is already declared by the schema", tokenType)
		}
		tok, err := labeler.RegisterToken(reg, tokenType)
		if err != nil {
			return nil, err
		}
		stages = append(stages, labeler.NewTokenizer(tok))
	}

	cache := corelabel.NewCache(reg, corelabel.DefaultConfig())
	if schema != nil {
		schemaStages, err := schema.Labelers(reg, cache)
		if err != nil {
			return nil, err
		}
		stages = append(stages, schemaStages...)
	}

	p, err := cache.Compile(c.String("pattern"))
	if err != nil {
		return nil, err
	}
	group := c.String("group")
	if group != "" && !slices.Contains(p.GroupNames(), group) {
		return nil, fmt.Errorf("--group: %w", &label.NameError{Kind: "group", Name: group})
	}

	return &searcher{
		reg:      reg,
		pattern:  p,
		group:    group,
		pipeline: labeler.NewPipeline(logger, stages...),
		logger:   logger,
	}, nil
}

// searchFile prints the matches in one document and returns their count.
func (s *searcher) searchFile(ctx context.Context, w io.Writer, path string) (int, error) {
	doc, err := docfile.LoadDocument(s.reg, path)
	if err != nil {
		return 0, err
	}
	if err := s.pipeline.Label(ctx, doc); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	matches, err := s.pattern.FindAll(doc, -1)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}

	n := 0
	for _, m := range matches {
		span := m.Span
		if s.group != "" {
			span = m.Group(s.group)
		}
		if !span.Valid() {
			continue
		}
		fmt.Fprintf(w, "%s:%s %s\n", path, span, doc.Covered(span))
		n++
	}
	s.logger.Debug("searched", slog.String("file", path), slog.Int("matches", n))
	return n, nil
}
