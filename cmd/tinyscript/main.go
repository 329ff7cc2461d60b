package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/unkn0wn-root/tinyscript/internal/config"
	"github.com/unkn0wn-root/tinyscript/internal/engine"
	"github.com/unkn0wn-root/tinyscript/internal/history"
	"github.com/unkn0wn-root/tinyscript/internal/script"
	"github.com/unkn0wn-root/tinyscript/internal/telemetry"
	"github.com/unkn0wn-root/tinyscript/internal/theme"
	"github.com/unkn0wn-root/tinyscript/internal/ui"
	"github.com/unkn0wn-root/tinyscript/internal/vars"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath  string
	presetPath  string
	expectPath  string
	tokens      bool
	ast         bool
	recover     bool
	watch       bool
	noColor     bool
	showVersion bool
	initConfig  bool
	maxSteps    int
	maxDepth    int
	timeout     time.Duration
	trace       telemetry.Config
	set         map[string]bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("tinyscript: ")
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	opts := options{trace: telemetry.ConfigFromEnv(os.Getenv)}
	fs := flag.NewFlagSet("tinyscript", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: tinyscript [flags] [file]\n\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", "", "Path to a settings file (toml, yaml or json)")
	fs.StringVar(&opts.presetPath, "preset", "", "Path to a .env file whose values pre-seed globals")
	fs.StringVar(&opts.expectPath, "expect", "", "Compare the script output with this file and print a diff")
	fs.BoolVar(&opts.tokens, "tokens", false, "Print the token stream and exit")
	fs.BoolVar(&opts.ast, "ast", false, "Print the parsed program and exit")
	fs.BoolVar(&opts.recover, "recover", false, "Report every broken statement instead of stopping at the first")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run the script whenever it changes")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&opts.showVersion, "version", false, "Show tinyscript version")
	fs.BoolVar(&opts.initConfig, "init-config", false, "Write a default settings file and exit")
	fs.IntVar(&opts.maxSteps, "max-steps", 0, "Abort after this many evaluation steps (0 = unlimited)")
	fs.IntVar(&opts.maxDepth, "max-depth", config.LimitMaxDepthDefault, "Maximum nesting depth")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Abort a run after this long (0 = unlimited)")
	fs.StringVar(
		&opts.trace.Endpoint,
		"trace-otel-endpoint",
		opts.trace.Endpoint,
		"OTLP collector endpoint for execution spans",
	)
	fs.BoolVar(
		&opts.trace.Insecure,
		"trace-otel-insecure",
		opts.trace.Insecure,
		"Disable TLS for OTLP trace export",
	)
	fs.StringVar(
		&opts.trace.ServiceName,
		"trace-otel-service",
		opts.trace.ServiceName,
		"Override service.name resource attribute for exported spans",
	)
	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	opts.trace.Endpoint = strings.TrimSpace(opts.trace.Endpoint)
	opts.trace.ServiceName = strings.TrimSpace(opts.trace.ServiceName)
	opts.trace.Version = version
	return opts, fs.Args(), nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "tinyscript %s\n", version)
		fmt.Fprintf(stdout, "  commit: %s\n", commit)
		fmt.Fprintf(stdout, "  built:  %s\n", date)
		return 0
	}
	if len(rest) > 1 {
		fmt.Fprintln(stderr, "usage: tinyscript [flags] [file]")
		return 2
	}

	settings, handle := loadSettings(opts.configPath)
	if opts.initConfig {
		if err := config.SaveSettings(settings, handle); err != nil {
			log.Printf("write settings: %v", err)
			return 1
		}
		fmt.Fprintln(stdout, handle.Path)
		return 0
	}
	applyFlags(&settings, opts)

	color := settings.ColorEnabled()
	th := theme.New(settings.Theme, theme.NewRenderer(stdout, color))
	errTheme := theme.New(settings.Theme, theme.NewRenderer(stderr, color))

	var filePath, src string
	if len(rest) == 1 {
		filePath = filepath.Clean(rest[0])
		data, err := os.ReadFile(filePath)
		if err != nil {
			log.Printf("read file: %v", err)
			return 1
		}
		src = string(data)
	}

	if opts.tokens {
		for _, t := range script.Tokens("", src) {
			fmt.Fprintln(stdout, t.String())
		}
		return 0
	}
	if opts.ast {
		return dumpAST(filePath, src, settings, stdout, stderr, errTheme)
	}

	globals, err := loadGlobals(settings.Presets)
	if err != nil {
		fmt.Fprintln(stderr, errTheme.Error.Render(err.Error()))
		return 1
	}

	tracer, err := telemetry.New(opts.trace)
	if err != nil {
		log.Printf("telemetry init error: %v", err)
		tracer = telemetry.Noop()
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracer.Shutdown(ctx); shutdownErr != nil {
			log.Printf("telemetry shutdown: %v", shutdownErr)
		}
	}()

	store := openHistory(settings.History)
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("history close: %v", err)
			}
		}()
	}

	engOpts := engine.Options{
		Limits: script.Limits{
			MaxSteps: settings.Limits.MaxSteps,
			MaxDepth: settings.Limits.MaxDepth,
			Timeout:  settings.Limits.TimeoutDuration(),
		},
		Recover: settings.Recover,
		Globals: globals,
		Tracer:  tracer,
		History: store,
		Warn:    func(err error) { log.Printf("history: %v", err) },
	}

	if filePath == "" {
		return repl(stdin, stdout, engOpts, settings, th)
	}

	if opts.expectPath == "" {
		engOpts.Output = stdout
	}
	h := &host{
		eng:    engine.New(engOpts),
		stdout: stdout,
		stderr: stderr,
		theme:  errTheme,
		expect: opts.expectPath,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if opts.watch {
		return h.watch(ctx, filePath, src)
	}
	return h.runFile(ctx, filePath, src)
}

func loadSettings(path string) (config.Settings, config.SettingsHandle) {
	var (
		settings config.Settings
		handle   config.SettingsHandle
		err      error
	)
	if path != "" {
		settings, handle, err = config.LoadSettingsFile(path)
	} else {
		settings, handle, err = config.LoadSettings()
	}
	if err != nil {
		log.Printf("settings load error: %v", err)
		settings = config.DefaultSettings()
		handle = config.SettingsHandle{
			Path:   filepath.Join(config.Dir(), "settings.toml"),
			Format: config.SettingsFormatTOML,
		}
	}
	return settings, handle
}

// applyFlags lets explicitly set flags override the settings file.
func applyFlags(settings *config.Settings, opts options) {
	if opts.set["recover"] {
		settings.Recover = opts.recover
	}
	if opts.noColor {
		off := false
		settings.Color = &off
	}
	if opts.set["preset"] {
		settings.Presets = opts.presetPath
	}
	if opts.set["max-steps"] {
		settings.Limits.MaxSteps = opts.maxSteps
	}
	if opts.set["max-depth"] {
		settings.Limits.MaxDepth = opts.maxDepth
	}
	if opts.set["timeout"] {
		settings.Limits.Timeout = opts.timeout.String()
	}
	*settings = config.Normalise(*settings)
}

func loadGlobals(path string) (map[string]script.Primitive, error) {
	if path == "" {
		return nil, nil
	}
	return vars.LoadPresets(path)
}

func openHistory(hs config.HistorySettings) history.Recorder {
	if !hs.Enabled {
		return nil
	}
	store, err := history.Open(string(hs.Backend), hs.Path, hs.MaxEntries)
	if err != nil {
		log.Printf("history open error: %v", err)
		return nil
	}
	if err := store.Load(); err != nil {
		log.Printf("history load error: %v", err)
	}
	return store
}

func dumpAST(path, src string, settings config.Settings, stdout, stderr io.Writer, th theme.Theme) int {
	prog, err := script.ParseWith(path, src, script.ParseOptions{
		Recover:  settings.Recover,
		MaxDepth: settings.Limits.MaxDepth,
	})
	if prog != nil && len(prog.Stmts) > 0 {
		fmt.Fprintln(stdout, prog.String())
	}
	if err != nil {
		fmt.Fprintln(stderr, th.Error.Render(err.Error()))
		return 1
	}
	return 0
}

func repl(stdin io.Reader, stdout io.Writer, engOpts engine.Options, settings config.Settings, th theme.Theme) int {
	cfg := ui.Config{
		Engine:             engine.New(engOpts),
		Theme:              th,
		Prompt:             settings.Prompt,
		ContinuationPrompt: settings.ContinuationPrompt,
	}
	if !isTerminal(stdin) {
		return plainREPL(context.Background(), stdin, stdout, ui.NewSession(cfg))
	}
	code, err := ui.Run(context.Background(), cfg)
	if err != nil {
		log.Printf("repl: %v", err)
		return 1
	}
	return code
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
