package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recera/compilemode/cmd/compilemode/internal/ui"
	"github.com/recera/compilemode/pkg/compiler"
)

// debounceDelay batches editor save bursts into one rebuild.
const debounceDelay = 100 * time.Millisecond

func newWatchCommand() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompile sources as they change",
		Long: `Compiles the project once, then watches the project directory and recompiles
every source file that is written or created.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, nil)
		},
	}
	opts.register(cmd)
	return cmd
}

// runWatch compiles the project and rebuilds changed files until ctx is
// done. onBuild, when set, receives every successful output and may be
// called from several goroutines.
func runWatch(ctx context.Context, opts buildOptions, onBuild func(*output)) error {
	b, err := newBuilder(opts)
	if err != nil {
		return err
	}
	defer b.close()

	b.observe = onBuild
	w, err := newWatcher(b)
	if err != nil {
		return err
	}
	defer w.close()

	if err := w.initialBuild(ctx); err != nil {
		var cerr *compiler.Error
		if errors.As(err, &cerr) && cerr.Fatal() {
			return err
		}
		fmt.Println(ui.Warning(err.Error()))
	}

	fmt.Println(ui.Title("watching " + b.root))
	fmt.Println(ui.Muted("press Ctrl+C to stop"))
	w.run(ctx)
	return nil
}

// watcher rebuilds the sources of one project on change.
type watcher struct {
	b  *builder
	fs *fsnotify.Watcher
}

func newWatcher(b *builder) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &watcher{b: b, fs: fw}
	if err := w.addTree(b.root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *watcher) close() {
	w.fs.Close()
}

// addTree watches dir and every directory below it.
func (w *watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && skipDir(info.Name()) {
			return filepath.SkipDir
		}
		if w.b.outDir != "" && path == w.b.outDir {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *watcher) initialBuild(ctx context.Context) error {
	paths, err := w.b.sources(nil)
	if err != nil {
		return err
	}
	start := time.Now()
	results, err := w.b.compileAll(ctx, paths)
	for _, r := range results {
		fmt.Println(ui.FileLine(r))
	}
	fmt.Println(ui.Summary(results, time.Since(start)))
	return err
}

func (w *watcher) run(ctx context.Context) {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	pending := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						logger.Warn("failed to watch directory", zap.String("dir", event.Name), zap.Error(err))
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.isRelevantFile(event.Name) {
				continue
			}
			pending[event.Name] = true
			debounce.Reset(debounceDelay)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-debounce.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			pending = make(map[string]bool)
			sort.Strings(changed)
			w.rebuild(ctx, changed)
		}
	}
}

// isRelevantFile reports whether a changed path is a source the project
// compiles.
func (w *watcher) isRelevantFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsx", ".tsx", ".js":
	default:
		return false
	}
	rel, err := filepath.Rel(w.b.root, path)
	if err != nil {
		rel = path
	}
	return w.b.cfg.MatchSource(rel)
}

func (w *watcher) rebuild(ctx context.Context, paths []string) {
	for _, path := range paths {
		start := time.Now()
		out, err := w.b.compileFile(ctx, path)
		fmt.Println(ui.FileLine(fileResult(path, out, err)))
		if err != nil {
			logger.Debug("rebuild failed", zap.String("file", path), zap.Error(err))
			continue
		}
		logger.Debug("rebuilt file",
			zap.String("file", path),
			zap.Duration("elapsed", time.Since(start)))
	}
}
