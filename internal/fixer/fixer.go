package fixer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/gnolang/jmig/internal/javasrc"
	tt "github.com/gnolang/jmig/internal/types"
)

// ErrStale is returned when a file changed on disk after it was migrated in
// memory.
var ErrStale = errors.New("file changed since it was read")

// Fixer writes migrated sources back to disk.
type Fixer struct {
	DryRun bool
	// Out receives dry-run diffs and progress messages.
	Out io.Writer
}

func New(dryRun bool, out io.Writer) *Fixer {
	if out == nil {
		out = os.Stdout
	}
	return &Fixer{
		DryRun: dryRun,
		Out:    out,
	}
}

// Fix writes the output of a modified result to its file. In dry-run mode
// it prints a unified diff instead. Unmodified results are ignored.
func (f *Fixer) Fix(result *tt.FileResult) error {
	if result == nil || !result.Modified() {
		return nil
	}
	if result.Filename == "" {
		return fmt.Errorf("result has no file name")
	}

	content, err := os.ReadFile(result.Filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if !bytes.Equal(content, result.Original) {
		return fmt.Errorf("%s: %w", result.Filename, ErrStale)
	}

	if f.DryRun {
		diff, err := UnifiedDiff(result.Filename, result.Original, result.Output)
		if err != nil {
			return fmt.Errorf("failed to compute diff: %w", err)
		}
		fmt.Fprint(f.Out, diff)
		return nil
	}

	if err := javasrc.Validate(context.Background(), result.Filename, result.Output); err != nil {
		return err
	}
	if err := writeFileAtomic(result.Filename, result.Output); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(f.Out, "Migrated %s\n", result.Filename)
	return nil
}

// UnifiedDiff renders the change from before to after as a unified diff
// with three lines of context.
func UnifiedDiff(filename string, before, after []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + filepath.ToSlash(filename),
		ToFile:   "b/" + filepath.ToSlash(filename),
		Context:  3,
	})
}

// writeFileAtomic replaces filename with data through a temporary file in
// the same directory, keeping the original permissions.
func writeFileAtomic(filename string, data []byte) error {
	info, err := os.Stat(filename)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmpName, filename)
}
