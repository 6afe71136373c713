package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	tt "github.com/gnolang/jmig/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	recipeStyle     = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
	addedStyle      = color.New(color.FgGreen)
	removedStyle    = color.New(color.FgRed)
)

const (
	kindMigrate  = "migrate"
	kindConflict = "conflict"
)

// SiteData holds what the site template needs to render one call site.
type SiteData struct {
	Kind            string
	Recipe          string
	Filename        string
	Line            int
	Column          int
	EndColumn       int
	MaxLineNumWidth int
	Padding         string
	Message         string
	Note            string
	SnippetLine     string
}

var siteTemplate = template.Must(template.New("site").Funcs(template.FuncMap{
	"header":              header,
	"snippet":             codeSnippet,
	"underlineAndMessage": underlineAndMessage,
	"note":                note,
}).Parse(siteTemplateText))

// GenerateFormattedResult renders every report of result: the import
// changes of each recipe followed by its migrated and conflicting call
// sites with the line they are on in the text that recipe ran on.
func GenerateFormattedResult(result *tt.FileResult) string {
	if result == nil {
		return ""
	}
	var builder strings.Builder
	for _, report := range result.Reports {
		if len(report.Migrated) == 0 && len(report.Conflicts) == 0 {
			continue
		}
		input := report.Input
		if input == nil {
			input = result.Original
		}
		lines := sourceLines(input)
		builder.WriteString(importChanges(report, result.Filename))
		for _, pos := range report.Migrated {
			builder.WriteString(buildSite(kindMigrate, report.Recipe, result.Filename, pos, lines,
				"call site migrated", ""))
		}
		for _, c := range report.Conflicts {
			builder.WriteString(buildSite(kindConflict, report.Recipe, result.Filename, c.Position, lines,
				fmt.Sprintf("%s would rebind a name already bound to %s", c.Wanted.String(), c.Existing),
				"call site left unchanged"))
		}
	}
	return builder.String()
}

func buildSite(kind, recipe, filename string, pos tt.Position, lines []string, message, noteText string) string {
	maxLineNumWidth := calculateMaxLineNumWidth(pos.Line)
	data := SiteData{
		Kind:            kind,
		Recipe:          recipe,
		Filename:        filename,
		Line:            pos.Line,
		Column:          pos.Column,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		Message:         message,
		Note:            noteText,
	}
	if pos.Line > 0 && pos.Line <= len(lines) {
		data.SnippetLine = lines[pos.Line-1]
		data.EndColumn = calleeEnd(data.SnippetLine, pos.Column)
	}

	var buf bytes.Buffer
	if err := siteTemplate.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting call site: %v", err)
	}
	return buf.String()
}

func importChanges(report tt.Report, filename string) string {
	if len(report.Added) == 0 && len(report.Removed) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(suggestionStyle.Sprint("imports: "))
	b.WriteString(recipeStyle.Sprintf("%s\n", report.Recipe))
	b.WriteString(lineStyle.Sprint(" --> "))
	b.WriteString(fileStyle.Sprintf("%s\n", filename))
	for _, imp := range report.Removed {
		b.WriteString(removedStyle.Sprintf("  - %s\n", imp.String()))
	}
	for _, imp := range report.Added {
		b.WriteString(addedStyle.Sprintf("  + %s\n", imp.String()))
	}
	b.WriteString("\n")
	return b.String()
}

// utils functions used in the text templates

func header(kind string, recipe string, maxLineNumWidth int, filename string, line int, column int) string {
	var endString string
	switch kind {
	case kindMigrate:
		endString = suggestionStyle.Sprint("migrate: ")
	case kindConflict:
		endString = warningStyle.Sprint("conflict: ")
	default:
		endString = errorStyle.Sprint("error: ")
	}

	endString += recipeStyle.Sprintf("%s\n", recipe)

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d:%d", filename, line, column)

	return endString
}

func codeSnippet(snippetLine string, line int, maxLineNumWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	lineNum := fmt.Sprintf("%*d", maxLineNumWidth, line)
	endString += lineStyle.Sprintf("%s | ", lineNum)
	endString += strings.TrimLeftFunc(snippetLine, unicode.IsSpace)
	return endString
}

func underlineAndMessage(message string, padding string, snippetLine string, column int, endColumn int) string {
	endString := lineStyle.Sprintf("%s| ", padding)

	if snippetLine == "" || endColumn < column {
		return endString + messageStyle.Sprint(message)
	}

	indent := snippetLine[:len(snippetLine)-len(strings.TrimLeftFunc(snippetLine, unicode.IsSpace))]
	indentWidth := calculateVisualColumn(indent, len(indent)+1)

	underlineStart := calculateVisualColumn(snippetLine, column) - indentWidth
	if underlineStart < 0 {
		underlineStart = 0
	}
	underlineEnd := calculateVisualColumn(snippetLine, endColumn) - indentWidth
	underlineLength := underlineEnd - underlineStart + 1

	endString += strings.Repeat(" ", underlineStart)
	endString += messageStyle.Sprintf("%s\n", strings.Repeat("~", underlineLength))

	endString += lineStyle.Sprintf("%s= ", padding)
	endString += messageStyle.Sprint(message)

	return endString
}

func note(note string) string {
	if note == "" {
		return ""
	}
	return suggestionStyle.Sprint("Note: ") + lineStyle.Sprint(note)
}

// calleeEnd returns the column of the last character before the opening
// parenthesis of the call starting at column.
func calleeEnd(line string, column int) int {
	if column < 1 || column > len(line) {
		return 0
	}
	if i := strings.IndexByte(line[column-1:], '('); i > 0 {
		return column + i - 1
	}
	return len(strings.TrimRightFunc(line, unicode.IsSpace))
}

func sourceLines(src []byte) []string {
	lines := strings.Split(string(src), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// calculateVisualColumn calculates the visual column position
// in a string. taking into account tab characters.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}
