package migrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/jmig/internal"
	tt "github.com/gnolang/jmig/internal/types"
)

// Engine is the part of the migration engine used by the processing helpers.
type Engine interface {
	Run(filePath string) (*tt.FileResult, error)
	RunSource(source []byte) (*tt.FileResult, error)
	IgnoreRecipe(name string)
	IgnorePath(pattern string)
	IsIgnored(path string) bool
}

// Workers bounds the number of files processed at once by ProcessPath.
var Workers = runtime.NumCPU()

type options struct {
	noCache bool
}

type Option func(*options)

// WithoutCache disables the unchanged-file cache even when the
// configuration enables it.
func WithoutCache() Option {
	return func(o *options) { o.noCache = true }
}

// New creates an engine configured from the file at configurationPath. A
// missing file means the built-in defaults.
func New(rootDir string, configurationPath string, logger *zap.Logger, opts ...Option) (*internal.Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}

	engine, err := internal.NewEngine(rootDir, config.Recipes, logger)
	if err != nil {
		return nil, err
	}
	for _, pattern := range config.Ignore {
		engine.IgnorePath(pattern)
	}

	if config.Cache.Enabled && !o.noCache {
		dir := config.Cache.Dir
		if dir == "" {
			dir = DefaultCacheDir
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(rootDir, dir)
		}
		var deps []string
		if configurationPath != "" {
			deps = append(deps, configurationPath)
		}
		if err := engine.UseCache(dir, config.Cache.MaxAge, deps...); err != nil {
			return nil, fmt.Errorf("error initializing cache: %w", err)
		}
	}

	return engine, nil
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	sources [][]byte,
	processor func(Engine, []byte) (*tt.FileResult, error),
) ([]*tt.FileResult, error) {
	results := make([]*tt.FileResult, 0, len(sources))
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	processor func(Engine, string) (*tt.FileResult, error),
) ([]*tt.FileResult, error) {
	var all []*tt.FileResult
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return all, err
		}
		all = append(all, results...)
	}

	return all, nil
}

// ProcessPath runs processor on path, or on every Java file below it when
// path is a directory. Files that fail are logged and left out of the
// results. Results are sorted by filename.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	processor func(Engine, string) (*tt.FileResult, error),
) ([]*tt.FileResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) || engine.IsIgnored(path) {
			return nil, nil
		}
		result, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return []*tt.FileResult{result}, nil
	}

	files, err := collectFiles(engine, path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var (
		mu      sync.Mutex
		results = make([]*tt.FileResult, 0, len(files))
	)

	g, gctx := errgroup.WithContext(ctx)
	workers := Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, filePath := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer bar.Add(1)

			result, err := processor(engine, filePath)
			if err != nil {
				// one broken file must not stop the others
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", filePath), zap.Error(err))
				}
				return nil
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	sortResults(results)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return results, err
}

func collectFiles(engine Engine, root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if engine.IsIgnored(filePath) {
			if fileInfo.IsDir() && filePath != root {
				return filepath.SkipDir
			}
			if !fileInfo.IsDir() {
				return nil
			}
		}
		if !fileInfo.IsDir() && hasDesiredExtension(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}
	return files, nil
}

func sortResults(results []*tt.FileResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Filename < results[j].Filename
	})
}

func ProcessFile(engine Engine, filePath string) (*tt.FileResult, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine Engine, source []byte) (*tt.FileResult, error) {
	return engine.RunSource(source)
}

func hasDesiredExtension(path string) bool {
	return filepath.Ext(path) == ".java"
}
