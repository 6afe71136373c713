package nolint

import (
	"fmt"
	"math"
	"strings"

	tt "github.com/gnolang/jmig/internal/types"
)

const nomigratePrefix = "nomigrate"

// Manager manages nomigrate scopes and checks if a line is excluded from migration.
type Manager struct {
	scopes []scope
}

// scope is a range of lines where a nomigrate comment applies.
type scope struct {
	recipes map[string]struct{}
	start   int
	end     int
}

// ParseComments collects the nomigrate comments of a compilation unit.
//
//	// nomigrate                         everything on the next line
//	foo(); // nomigrate:recipe-a,recipe-b  only the listed recipes, this line
//
// A comment above the package declaration applies to the whole file.
func ParseComments(unit *tt.CompilationUnit) *Manager {
	manager := Manager{}
	for _, c := range unit.Comments {
		sc, err := parseComment(c, unit.PackageLine)
		if err != nil {
			// not a nomigrate comment, or a malformed one
			continue
		}
		manager.scopes = append(manager.scopes, sc)
	}
	return &manager
}

func parseComment(c tt.Comment, packageLine int) (scope, error) {
	var sc scope

	text := commentBody(c.Text)
	if !strings.HasPrefix(text, nomigratePrefix) {
		return sc, fmt.Errorf("not a nomigrate comment")
	}
	rest := text[len(nomigratePrefix):]

	// either bare, or followed by a colon and a list of recipes
	if len(rest) > 0 && rest[0] != ':' && rest[0] != ' ' && rest[0] != '\t' {
		return sc, fmt.Errorf("invalid nomigrate comment format")
	}
	if len(rest) > 0 && rest[0] == ':' {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return sc, fmt.Errorf("invalid nomigrate comment: no recipes specified after colon")
		}
	} else {
		rest = ""
	}
	sc.recipes = parseRecipeNames(rest)

	switch {
	case packageLine > 0 && c.EndLine < packageLine:
		sc.start, sc.end = 0, math.MaxInt
	case c.Inline:
		sc.start, sc.end = c.Line, c.EndLine
	default:
		// standalone: the comment itself and the line after it
		sc.start, sc.end = c.Line, c.EndLine+1
	}
	return sc, nil
}

// commentBody strips the comment delimiters and surrounding space.
func commentBody(text string) string {
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(text[2:], "*/")
	}
	return strings.TrimSpace(text)
}

// parseRecipeNames parses the recipe list of a nomigrate comment.
func parseRecipeNames(text string) map[string]struct{} {
	recipes := make(map[string]struct{})
	if text == "" {
		return recipes
	}
	for _, name := range strings.Split(text, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			recipes[name] = struct{}{}
		}
	}
	return recipes
}

// IsSuppressed reports whether recipe must not touch code on line.
func (m *Manager) IsSuppressed(line int, recipe string) bool {
	if m == nil {
		return false
	}
	for _, sc := range m.scopes {
		if line < sc.start || line > sc.end {
			continue
		}
		// no recipe list means every recipe
		if len(sc.recipes) == 0 {
			return true
		}
		if _, ok := sc.recipes[recipe]; ok {
			return true
		}
	}
	return false
}
