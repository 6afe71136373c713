package formatter

import (
	"fmt"
	"strings"

	"github.com/gnolang/jmig/internal/fixer"
	tt "github.com/gnolang/jmig/internal/types"
)

// FormatDiff renders the change a result would make as a colored unified
// diff. Unmodified results render as an empty string.
func FormatDiff(result *tt.FileResult) (string, error) {
	if result == nil || !result.Modified() {
		return "", nil
	}
	diff, err := fixer.UnifiedDiff(result.Filename, result.Original, result.Output)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(fileStyle.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(lineStyle.Sprint(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addedStyle.Sprint(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(removedStyle.Sprint(line))
		default:
			b.WriteString(line)
		}
	}
	return b.String(), nil
}

// Summary counts the outcome of a run over several files.
type Summary struct {
	Files      int `json:"files"`
	Modified   int `json:"modified"`
	Migrated   int `json:"migrated"`
	Conflicts  int `json:"conflicts"`
	Unresolved int `json:"unresolved"`
	Suppressed int `json:"suppressed"`
}

func Summarize(results []*tt.FileResult) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Files++
		if r.Modified() {
			s.Modified++
		}
		for _, report := range r.Reports {
			s.Migrated += len(report.Migrated)
			s.Conflicts += len(report.Conflicts)
			s.Unresolved += report.Unresolved
			s.Suppressed += report.Suppressed
		}
	}
	return s
}

// FormatSummary renders s as a single line.
func FormatSummary(s Summary) string {
	line := fmt.Sprintf("%d files scanned, %d modified, %d call sites migrated", s.Files, s.Modified, s.Migrated)
	if s.Conflicts > 0 {
		line += warningStyle.Sprintf(", %d conflicts", s.Conflicts)
	}
	if s.Suppressed > 0 {
		line += fmt.Sprintf(", %d suppressed", s.Suppressed)
	}
	if s.Unresolved > 0 {
		line += fmt.Sprintf(", %d unresolved", s.Unresolved)
	}
	return line + "\n"
}
