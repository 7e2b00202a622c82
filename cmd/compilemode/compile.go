package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/recera/compilemode/cmd/compilemode/internal/config"
	"github.com/recera/compilemode/cmd/compilemode/internal/ui"
	"github.com/recera/compilemode/internal/cache"
	"github.com/recera/compilemode/pkg/compiler"
	"github.com/recera/compilemode/pkg/jsx/parse"
)

// glueExt is appended to a source's base name for the runtime glue artifact.
const glueExt = ".glue.yaml"

type buildOptions struct {
	project  string
	outDir   string
	platform string
	noCache  bool
	all      bool
	jobs     int
}

func (o *buildOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.project, "project", "C", ".", "Project directory containing compilemode.yaml")
	cmd.Flags().StringVarP(&o.outDir, "out", "o", "", "Output directory (defaults to the config's outDir, or next to sources)")
	cmd.Flags().StringVarP(&o.platform, "platform", "p", "", "Target platform, overriding the config")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "Compile every file even when a cached result exists")
	cmd.Flags().BoolVar(&o.all, "all", false, "Compile every JSX root, not only those marked compileMode")
	cmd.Flags().IntVarP(&o.jobs, "jobs", "j", runtime.NumCPU(), "Number of files compiled in parallel")
}

func newCompileCommand() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "compile [files or directories...]",
		Short: "Compile JSX sources into templates",
		Long: `Compiles the compile-mode roots of every selected source file into a template
file and a glue file describing the dynamic nodes. Without arguments the
project's include patterns select the sources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args)
		},
	}
	opts.register(cmd)
	return cmd
}

func runCompile(ctx context.Context, opts buildOptions, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	b, err := newBuilder(opts)
	if err != nil {
		return err
	}
	defer b.close()

	paths, err := b.sources(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println(ui.Warning("no source files matched"))
		return nil
	}

	results, err := b.compileAll(ctx, paths)
	for _, r := range results {
		fmt.Println(ui.FileLine(r))
	}
	fmt.Println(ui.Summary(results, time.Since(start)))
	return err
}

// output is what one source file produced.
type output struct {
	Source string
	Result *compiler.Result
	Cached bool
}

// glue is the on-disk form of a file's runtime glue.
type glue struct {
	Source          string `yaml:"source"`
	Platform        string `yaml:"platform"`
	compiler.Result `yaml:",inline"`
}

// builder compiles source files of one project.
type builder struct {
	root     string
	cfg      *config.Config
	compiler *compiler.Config
	hash     string
	cache    *cache.Cache
	outDir   string
	all      bool
	jobs     int

	// observe receives every output compileFile produces
	observe func(*output)
}

func newBuilder(opts buildOptions) (*builder, error) {
	root := opts.project
	if root == "" {
		root = "."
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.platform != "" {
		if err := cfg.SetPlatform(opts.platform); err != nil {
			return nil, err
		}
	}

	ccfg, err := cfg.CompilerConfig()
	if err != nil {
		return nil, err
	}

	b := &builder{
		root:     root,
		cfg:      cfg,
		compiler: ccfg,
		hash:     cfg.Hash(),
		outDir:   opts.outDir,
		all:      opts.all,
		jobs:     opts.jobs,
	}
	if b.outDir == "" && cfg.OutDir != "" {
		b.outDir = filepath.Join(root, cfg.OutDir)
	}
	if b.jobs < 1 {
		b.jobs = 1
	}

	if !opts.noCache && cfg.Cache.Enabled {
		c, err := cache.New(cache.Config{
			Dir:     filepath.Join(root, cfg.Cache.Dir),
			MaxSize: cfg.Cache.MaxSizeMB << 20,
			Logger:  logger.Named("cache"),
		})
		if err != nil {
			logger.Warn("continuing without build cache", zap.Error(err))
		} else {
			b.cache = c
		}
	}
	return b, nil
}

func (b *builder) close() {
	if b.cache == nil {
		return
	}
	if err := b.cache.Close(); err != nil {
		logger.Warn("failed to save cache index", zap.Error(err))
	}
}

// sources expands files and directories into the source files to compile.
// Directories are filtered through the configured include and exclude
// patterns; files named explicitly are always compiled.
func (b *builder) sources(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{b.root}
	}

	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(b.root, path)
			if err != nil {
				rel = path
			}
			if b.cfg.MatchSource(rel) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(out)
	return out, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// compileAll compiles paths in parallel. Per-file failures are collected and
// reported together; a fatal configuration error stops the build.
func (b *builder) compileAll(ctx context.Context, paths []string) ([]ui.FileResult, error) {
	results := make([]ui.FileResult, len(paths))

	var (
		mu   sync.Mutex
		errs error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			out, err := b.compileFile(ctx, path)
			results[i] = fileResult(path, out, err)
			if err == nil {
				return nil
			}

			var cerr *compiler.Error
			if errors.As(err, &cerr) && cerr.Fatal() {
				return err
			}
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if n := len(multierr.Errors(errs)); n > 0 {
		return results, fmt.Errorf("%d of %d files failed: %w", n, len(paths), errs)
	}
	return results, nil
}

func fileResult(path string, out *output, err error) ui.FileResult {
	r := ui.FileResult{Path: path, Err: err}
	if out != nil {
		r.Cached = out.Cached
		r.Templates = len(out.Result.Templates)
		r.Nodes = len(out.Result.Nodes)
	}
	return r
}

// compileFile compiles one source file and writes its artifacts.
func (b *builder) compileFile(ctx context.Context, path string) (*output, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	key := cache.Key(src, b.hash)
	if b.cache != nil {
		if res, ok := b.cache.Get(key); ok {
			logger.Debug("cache hit", zap.String("file", path))
			out := &output{Source: path, Result: res, Cached: true}
			return out, b.finish(out)
		}
	}

	file, err := parse.Parse(ctx, src, path)
	if err != nil {
		return nil, err
	}

	roots := file.CompileRoots(b.all)
	res, err := compiler.Compile(b.compiler, file.Imports, file.XSModules, roots...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("compiled file",
		zap.String("file", path),
		zap.Int("roots", len(roots)),
		zap.Int("dynamic_nodes", len(res.Nodes)))

	if b.cache != nil {
		b.cache.InvalidateSource(path)
		if err := b.cache.Put(key, path, res); err != nil {
			logger.Warn("failed to cache result", zap.String("file", path), zap.Error(err))
		}
	}

	out := &output{Source: path, Result: res}
	return out, b.finish(out)
}

func (b *builder) finish(out *output) error {
	if err := b.write(out); err != nil {
		return err
	}
	if b.observe != nil {
		b.observe(out)
	}
	return nil
}

// outputPath maps a source file to an artifact path with the given suffix.
func (b *builder) outputPath(source, suffix string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source)) + suffix
	if b.outDir == "" {
		return base
	}
	rel, err := filepath.Rel(b.root, base)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(base)
	}
	return filepath.Join(b.outDir, rel)
}

// write stores the template and glue files of out. Files without compiled
// roots produce no artifacts.
func (b *builder) write(out *output) error {
	if len(out.Result.Templates) == 0 {
		return nil
	}

	data, err := yaml.Marshal(glue{
		Source:   out.Source,
		Platform: b.cfg.Platform,
		Result:   *out.Result,
	})
	if err != nil {
		return fmt.Errorf("failed to encode glue: %w", err)
	}

	for path, content := range map[string][]byte{
		b.outputPath(out.Source, b.cfg.TemplateExt): []byte(templateText(out)),
		b.outputPath(out.Source, glueExt):           data,
	} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// templateText renders the template file content of out.
func templateText(out *output) string {
	var b strings.Builder
	for _, t := range out.Result.Templates {
		b.WriteString(t.Wrap())
	}
	return b.String()
}
