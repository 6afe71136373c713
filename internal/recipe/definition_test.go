package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/jmig/internal/javasrc"
	tt "github.com/gnolang/jmig/internal/types"
)

func parse(t *testing.T, src string) *tt.CompilationUnit {
	t.Helper()
	unit, err := javasrc.Parse(context.Background(), "ExampleTest.java", []byte(src))
	require.NoError(t, err)
	return unit
}

func invocation(t *testing.T, unit *tt.CompilationUnit, name string) *tt.Invocation {
	t.Helper()
	for _, inv := range unit.Invocations {
		if inv.Name == name {
			return inv
		}
	}
	t.Fatalf("no invocation of %s", name)
	return nil
}

func TestDefinitionValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		modify  func(*Definition)
		wantErr string
	}{
		{name: "built-in", modify: func(*Definition) {}},
		{
			name:    "no name",
			modify:  func(d *Definition) { d.Name = "" },
			wantErr: "recipe has no name",
		},
		{
			name:    "no legacy",
			modify:  func(d *Definition) { d.Legacy = tt.Symbol{} },
			wantErr: "legacy entry point is not set",
		},
		{
			name:    "no replacement",
			modify:  func(d *Definition) { d.Replacement = tt.Symbol{} },
			wantErr: "replacement entry point is not set",
		},
		{
			name:    "no matcher factory",
			modify:  func(d *Definition) { d.MatcherFactories = nil },
			wantErr: "no matcher factory configured",
		},
		{
			name:    "keyword as method",
			modify:  func(d *Definition) { d.Replacement.Member = "class" },
			wantErr: `"class" is not a valid method name`,
		},
		{
			name:    "malformed owner",
			modify:  func(d *Definition) { d.Legacy.Owner = "org..junit.Assert" },
			wantErr: `"org..junit.Assert" is not a valid type name`,
		},
		{
			name:    "malformed matcher factory",
			modify:  func(d *Definition) { d.MatcherFactories = []string{"org.hamcrest.1Matchers"} },
			wantErr: "not a valid matcher factory type",
		},
		{
			name:    "negative arity",
			modify:  func(d *Definition) { d.Overloads[-1] = d.Replacement },
			wantErr: "negative arity -1",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			def := UseHamcrestAssertThat()
			tc.modify(&def)

			err := def.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestReplacementFor(t *testing.T) {
	t.Parallel()
	def := UseHamcrestAssertThat()
	def.Replacement = tt.MustParseSymbol("org.assertj.Assertions.assertThat")

	assert.Equal(t, "org.hamcrest.MatcherAssert.assertThat", def.ReplacementFor(2).String())
	assert.Equal(t, "org.hamcrest.MatcherAssert.assertThat", def.ReplacementFor(3).String())
	assert.Equal(t, "org.assertj.Assertions.assertThat", def.ReplacementFor(1).String())
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()
	for name, want := range map[string]bool{
		"assertThat": true,
		"$check":     true,
		"_x1":        true,
		"":           false,
		"1x":         false,
		"assert":     false,
		"a.b":        false,
		"ünïcode":    true,
	} {
		assert.Equal(t, want, isIdentifier(name), name)
	}
	assert.True(t, isQualifiedName("org.hamcrest.MatcherAssert"))
	assert.False(t, isQualifiedName("org.hamcrest."))
}
