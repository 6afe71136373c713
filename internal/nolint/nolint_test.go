package nolint

import (
	"context"
	"testing"

	"github.com/gnolang/jmig/internal/javasrc"
	tt "github.com/gnolang/jmig/internal/types"
)

func TestParseRecipeNames(t *testing.T) {
	t.Parallel()
	input := "recipe1, recipe2,recipe3"
	expected := []string{"recipe1", "recipe2", "recipe3"}
	result := parseRecipeNames(input)
	if len(result) != len(expected) {
		t.Errorf("Expected %d recipes, got %d", len(expected), len(result))
	}
	for _, name := range expected {
		if _, exists := result[name]; !exists {
			t.Errorf("Expected recipe %s not found", name)
		}
	}
}

func TestParseCommentRejectsOtherComments(t *testing.T) {
	t.Parallel()
	for _, text := range []string{
		"// just a comment",
		"// nomigrated",
		"// nomigrate:",
		"/* nolint */",
	} {
		if _, err := parseComment(tt.Comment{Text: text, Line: 3, EndLine: 3}, 1); err == nil {
			t.Errorf("expected %q to be rejected", text)
		}
	}
}

func TestIsSuppressed(t *testing.T) {
	t.Parallel()
	source := `package test;

class Test {
    void test() {
        // nomigrate
        assertThat(1, is(1));
        assertThat(2, is(2));
        assertThat(3, is(3)); // nomigrate:recipe1
        /* nomigrate:recipe2 */
        assertThat(4, is(4));
    }
}
`

	unit, err := javasrc.Parse(context.Background(), "Test.java", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse source: %v", err)
	}

	manager := ParseComments(unit)

	tests := []struct {
		recipe   string
		line     int
		expected bool
	}{
		{"anyrecipe", 6, true},  // covered by nomigrate without recipes
		{"anyrecipe", 7, false}, // not covered
		{"recipe1", 8, true},    // covered by the trailing nomigrate:recipe1
		{"recipe2", 8, false},
		{"recipe2", 10, true}, // covered by the block comment above
		{"recipe3", 10, false},
	}

	for _, test := range tests {
		result := manager.IsSuppressed(test.line, test.recipe)
		if result != test.expected {
			t.Errorf("IsSuppressed at line %d for recipe '%s': expected %v, got %v", test.line, test.recipe, test.expected, result)
		}
	}
}

func TestWholeFileSuppression(t *testing.T) {
	t.Parallel()
	source := `// nomigrate:use-hamcrest-assert-that
package test;

class Test {
    void test() {
        assertThat(1, is(1));
    }
}
`

	unit, err := javasrc.Parse(context.Background(), "Test.java", []byte(source))
	if err != nil {
		t.Fatalf("Failed to parse source: %v", err)
	}

	manager := ParseComments(unit)
	if !manager.IsSuppressed(6, "use-hamcrest-assert-that") {
		t.Errorf("Expected line 6 to be suppressed by the file-level comment")
	}
	if manager.IsSuppressed(6, "other") {
		t.Errorf("Expected other recipes to be unaffected")
	}
}

func TestNilManager(t *testing.T) {
	t.Parallel()
	var m *Manager
	if m.IsSuppressed(1, "any") {
		t.Errorf("nil manager must not suppress anything")
	}
}
