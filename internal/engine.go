package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"

	"github.com/gnolang/jmig/internal/javasrc"
	"github.com/gnolang/jmig/internal/nolint"
	"github.com/gnolang/jmig/internal/recipe"
	tt "github.com/gnolang/jmig/internal/types"
)

// Engine runs migration recipes over Java compilation units.
type Engine struct {
	rootDir     string
	logger      *zap.Logger
	drivers     map[string]*recipe.Driver
	ignored     map[string]bool
	ignoreLines []string
	ignoreMatch *ignore.GitIgnore
	cache       *Cache
}

// Define the recipeConstructor type
type recipeConstructor func() recipe.Definition

// allRecipeConstructors maps the names of built-in recipes to their
// default definitions.
var allRecipeConstructors = map[string]recipeConstructor{
	recipe.UseHamcrestAssertThatName: recipe.UseHamcrestAssertThat,
}

// BuiltinRecipes returns the default definitions of every built-in recipe,
// sorted by name.
func BuiltinRecipes() []recipe.Definition {
	defs := make([]recipe.Definition, 0, len(allRecipeConstructors))
	for _, cstr := range allRecipeConstructors {
		defs = append(defs, cstr())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// NewEngine creates an engine running the built-in recipes, adjusted by
// the recipes section of the configuration.
func NewEngine(rootDir string, recipes map[string]tt.RecipeConfig, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := &Engine{
		rootDir: rootDir,
		logger:  logger,
		drivers: make(map[string]*recipe.Driver),
		ignored: make(map[string]bool),
	}

	defs, err := buildDefinitions(recipes)
	if err != nil {
		return nil, err
	}
	for _, def := range defs {
		name := def.Name
		driver, err := recipe.NewDriver(def,
			recipe.WithLogger(logger.With(zap.String("recipe", name))),
			recipe.WithSkip(func(inv *tt.Invocation) bool {
				return nolint.ParseComments(inv.Unit()).IsSuppressed(inv.Start.Line, name)
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("invalid recipe: %w", err)
		}
		engine.drivers[name] = driver
	}

	return engine, nil
}

func buildDefinitions(recipes map[string]tt.RecipeConfig) ([]recipe.Definition, error) {
	defs := make(map[string]recipe.Definition)
	for name, cstr := range allRecipeConstructors {
		defs[name] = cstr()
	}

	for name, cfg := range recipes {
		def, known := defs[name]
		if !cfg.IsEnabled() {
			delete(defs, name)
			continue
		}
		if !known {
			def = recipe.Definition{Name: name}
		}
		merged, err := applyRecipeConfig(def, cfg)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", name, err)
		}
		defs[name] = merged
	}

	out := make([]recipe.Definition, 0, len(defs))
	for _, def := range defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func applyRecipeConfig(def recipe.Definition, cfg tt.RecipeConfig) (recipe.Definition, error) {
	if cfg.Description != "" {
		def.Description = cfg.Description
	}
	if cfg.Legacy != "" {
		s, err := tt.ParseSymbol(cfg.Legacy)
		if err != nil {
			return def, err
		}
		def.Legacy = s
	}
	if cfg.Replacement != "" {
		s, err := tt.ParseSymbol(cfg.Replacement)
		if err != nil {
			return def, err
		}
		def.Replacement = s
		// built-in overloads point at the old replacement
		def.Overloads = nil
	}
	if len(cfg.MatcherFactories) > 0 {
		def.MatcherFactories = append([]string(nil), cfg.MatcherFactories...)
	}
	if len(cfg.Overloads) > 0 {
		def.Overloads = make(map[int]tt.Symbol, len(cfg.Overloads))
		for arity, fqn := range cfg.Overloads {
			s, err := tt.ParseSymbol(fqn)
			if err != nil {
				return def, err
			}
			def.Overloads[arity] = s
		}
	}
	return def, nil
}

// UseCache enables the unchanged-file cache stored in dir. dependencies are
// files whose change invalidates every entry, typically the configuration.
// A zero maxAge keeps the default expiry.
func (e *Engine) UseCache(dir string, maxAge time.Duration, dependencies ...string) error {
	cache, err := NewCache(dir, dependencies...)
	if err != nil {
		return err
	}
	if maxAge > 0 {
		cache.SetMaxAge(maxAge)
	}
	e.cache = cache
	return nil
}

// Close flushes the cache, if any.
func (e *Engine) Close() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Flush()
}

// Recipes returns the definitions of the recipes that will run.
func (e *Engine) Recipes() []recipe.Definition {
	var defs []recipe.Definition
	for _, name := range e.activeRecipes() {
		defs = append(defs, e.drivers[name].Definition())
	}
	return defs
}

func (e *Engine) activeRecipes() []string {
	names := make([]string, 0, len(e.drivers))
	for name := range e.drivers {
		if !e.ignored[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Run applies all enabled recipes to the given file.
func (e *Engine) Run(filename string) (*tt.FileResult, error) {
	recipes := e.activeRecipes()
	if e.cache != nil && e.cache.IsUnchanged(filename, recipes) {
		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("error reading file: %w", err)
		}
		e.logger.Debug("cache hit", zap.String("file", filename))
		return &tt.FileResult{Filename: filename, Original: content, Output: content}, nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	result, err := e.run(context.Background(), filename, content, recipes)
	if err != nil {
		return nil, err
	}

	if e.cache != nil && !result.Modified() {
		if err := e.cache.MarkUnchanged(filename, recipes); err != nil {
			e.logger.Warn("failed to update cache", zap.String("file", filename), zap.Error(err))
		}
	}
	return result, nil
}

// RunSource applies all enabled recipes to the given source.
func (e *Engine) RunSource(source []byte) (*tt.FileResult, error) {
	return e.run(context.Background(), "", source, e.activeRecipes())
}

// run parses source once and again after every recipe that changed it, so
// each recipe sees resolved names for the current text.
func (e *Engine) run(ctx context.Context, filename string, source []byte, recipes []string) (*tt.FileResult, error) {
	result := &tt.FileResult{Filename: filename, Original: source, Output: source}
	if len(recipes) == 0 {
		return result, nil
	}

	unit, err := javasrc.Parse(ctx, filename, source)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}

	for i, name := range recipes {
		res := e.drivers[name].Run(unit)
		res.Report.Input = unit.Source
		result.Reports = append(result.Reports, res.Report)
		if res.Report.State != tt.StateModified {
			continue
		}

		output := javasrc.Render(res.Unit)
		if err := javasrc.Validate(ctx, filename, output); err != nil {
			return nil, fmt.Errorf("recipe %s: %w", name, err)
		}
		result.Output = output

		if i < len(recipes)-1 {
			unit, err = javasrc.Parse(ctx, filename, output)
			if err != nil {
				return nil, fmt.Errorf("error parsing rewritten file: %w", err)
			}
		}
	}
	return result, nil
}

// IgnoreRecipe disables a recipe by name.
func (e *Engine) IgnoreRecipe(name string) {
	if e.ignored == nil {
		e.ignored = make(map[string]bool)
	}
	e.ignored[name] = true
}

// IgnorePath excludes files matching a gitignore-style pattern.
func (e *Engine) IgnorePath(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return
	}
	e.ignoreLines = append(e.ignoreLines, pattern)
	e.ignoreMatch = ignore.CompileIgnoreLines(e.ignoreLines...)
}

// IsIgnored reports whether path matches one of the ignored patterns.
// Paths are matched relative to the engine's root directory.
func (e *Engine) IsIgnored(path string) bool {
	if e.ignoreMatch == nil {
		return false
	}
	if rel, err := filepath.Rel(e.rootDir, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	return e.ignoreMatch.MatchesPath(filepath.ToSlash(path))
}
