package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/jmig/internal/javasrc"
	tt "github.com/gnolang/jmig/internal/types"
)

const legacyExample = `package org.example;

import static org.hamcrest.CoreMatchers.is;
import static org.junit.Assert.assertThat;

class ExampleTest {
    void test() {
        assertThat(1 + 1, is(2));
    }
}
`

const migratedExample = `package org.example;

import static org.hamcrest.CoreMatchers.is;
import static org.hamcrest.MatcherAssert.assertThat;

class ExampleTest {
    void test() {
        assertThat(1 + 1, is(2));
    }
}
`

func newDriver(t *testing.T, opts ...Option) *Driver {
	t.Helper()
	d, err := NewDriver(UseHamcrestAssertThat(), opts...)
	require.NoError(t, err)
	return d
}

func TestDriverMigratesExample(t *testing.T) {
	t.Parallel()
	unit := parse(t, legacyExample)
	res := newDriver(t).Run(unit)

	report := res.Report
	assert.Equal(t, tt.StateModified, report.State)
	assert.Equal(t, UseHamcrestAssertThatName, report.Recipe)
	assert.Equal(t, "ExampleTest.java", report.Filename)
	assert.Equal(t, []tt.Position{{Offset: unit.Invocations[0].Start.Offset, Line: 8, Column: 9}}, report.Migrated)
	assert.Equal(t, []string{"import static org.hamcrest.MatcherAssert.assertThat;"}, names(report.Added))
	assert.Equal(t, []string{"import static org.junit.Assert.assertThat;"}, names(report.Removed))
	assert.Equal(t, []string{
		"import static org.hamcrest.CoreMatchers.is;",
		"import static org.hamcrest.MatcherAssert.assertThat;",
	}, names(report.Imports))
	assert.Empty(t, report.Conflicts)
	assert.Zero(t, report.Unresolved)

	assert.Equal(t, migratedExample, string(javasrc.Render(res.Unit)))

	// the input revision is untouched
	assert.NotSame(t, unit, res.Unit)
	assert.Equal(t, legacyExample, string(javasrc.Render(unit)))
	assert.False(t, unit.Changed())
}

func TestDriverIsIdempotent(t *testing.T) {
	t.Parallel()
	d := newDriver(t)
	first := d.Run(parse(t, legacyExample))
	require.Equal(t, tt.StateModified, first.Report.State)

	// running again on the new revision changes nothing
	again := d.Run(first.Unit)
	assert.Equal(t, tt.StateUnchanged, again.Report.State)
	assert.Same(t, first.Unit, again.Unit)

	// and neither does running on the rendered output
	output := javasrc.Render(first.Unit)
	reparsed := parse(t, string(output))
	second := d.Run(reparsed)
	assert.Equal(t, tt.StateUnchanged, second.Report.State)
	assert.Empty(t, second.Report.Migrated)
	assert.Equal(t, string(output), string(javasrc.Render(second.Unit)))
}

func TestDriverMigrations(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		src      string
		want     string
		migrated int
		added    []string
		removed  []string
	}{
		{
			name: "two call sites share one import change",
			src: `import static org.hamcrest.CoreMatchers.is;
import static org.junit.Assert.assertThat;

class T {
    void t() {
        assertThat(1, is(1));
        assertThat("reason", 2, is(2));
    }
}
`,
			want: `import static org.hamcrest.CoreMatchers.is;
import static org.hamcrest.MatcherAssert.assertThat;

class T {
    void t() {
        assertThat(1, is(1));
        assertThat("reason", 2, is(2));
    }
}
`,
			migrated: 2,
			added:    []string{"import static org.hamcrest.MatcherAssert.assertThat;"},
			removed:  []string{"import static org.junit.Assert.assertThat;"},
		},
		{
			name: "static on-demand import is kept",
			src: `import static org.hamcrest.CoreMatchers.is;
import static org.junit.Assert.*;

class T {
    void t() {
        assertThat(1, is(1));
        assertEquals(1, 1);
    }
}
`,
			want: `import static org.hamcrest.CoreMatchers.is;
import static org.hamcrest.MatcherAssert.assertThat;
import static org.junit.Assert.*;

class T {
    void t() {
        assertThat(1, is(1));
        assertEquals(1, 1);
    }
}
`,
			migrated: 1,
			added:    []string{"import static org.hamcrest.MatcherAssert.assertThat;"},
		},
		{
			name: "type qualified call",
			src: `import org.junit.Assert;
import static org.hamcrest.CoreMatchers.is;

class T {
    void t() {
        Assert.assertThat(1, is(1));
    }
}
`,
			want: `import org.hamcrest.MatcherAssert;
import static org.hamcrest.CoreMatchers.is;

class T {
    void t() {
        MatcherAssert.assertThat(1, is(1));
    }
}
`,
			migrated: 1,
			added:    []string{"import org.hamcrest.MatcherAssert;"},
			removed:  []string{"import org.junit.Assert;"},
		},
		{
			name: "type import still in use elsewhere",
			src: `import org.junit.Assert;
import static org.hamcrest.CoreMatchers.is;

class T {
    void t() {
        Assert.assertThat(1, is(1));
        Assert.assertEquals(1, 1);
    }
}
`,
			want: `import org.hamcrest.MatcherAssert;
import org.junit.Assert;
import static org.hamcrest.CoreMatchers.is;

class T {
    void t() {
        MatcherAssert.assertThat(1, is(1));
        Assert.assertEquals(1, 1);
    }
}
`,
			migrated: 1,
			added:    []string{"import org.hamcrest.MatcherAssert;"},
		},
		{
			name: "same member name on another type",
			src: `import org.assertj.core.api.Assertions;

import static org.hamcrest.CoreMatchers.is;
import static org.junit.Assert.assertThat;

class T {
    void t() {
        assertThat(1 + 1, is(2));
        Assertions.assertThat(3).isEqualTo(3);
    }
}
`,
			want: `import org.assertj.core.api.Assertions;

import static org.hamcrest.CoreMatchers.is;
import static org.hamcrest.MatcherAssert.assertThat;

class T {
    void t() {
        assertThat(1 + 1, is(2));
        Assertions.assertThat(3).isEqualTo(3);
    }
}
`,
			migrated: 1,
			added:    []string{"import static org.hamcrest.MatcherAssert.assertThat;"},
			removed:  []string{"import static org.junit.Assert.assertThat;"},
		},
		{
			name: "same member name on a receiver",
			src: `import static org.hamcrest.CoreMatchers.is;
import static org.junit.Assert.assertThat;

class T {
    void t() {
        assertThat(1 + 1, is(2));
        softly.assertThat(3).isEqualTo(3);
    }
}
`,
			want: `import static org.hamcrest.CoreMatchers.is;
import static org.hamcrest.MatcherAssert.assertThat;

class T {
    void t() {
        assertThat(1 + 1, is(2));
        softly.assertThat(3).isEqualTo(3);
    }
}
`,
			migrated: 1,
			added:    []string{"import static org.hamcrest.MatcherAssert.assertThat;"},
			removed:  []string{"import static org.junit.Assert.assertThat;"},
		},
		{
			name: "type import whose other use is fully qualified",
			src: `import org.junit.Assert;
import static org.hamcrest.CoreMatchers.is;

class T {
    void t() {
        Assert.assertThat(1, is(1));
        org.junit.Assert.assertThat(2, is(2));
    }
}
`,
			want: `import org.hamcrest.MatcherAssert;
import static org.hamcrest.CoreMatchers.is;

class T {
    void t() {
        MatcherAssert.assertThat(1, is(1));
        org.hamcrest.MatcherAssert.assertThat(2, is(2));
    }
}
`,
			migrated: 2,
			added:    []string{"import org.hamcrest.MatcherAssert;"},
			removed:  []string{"import org.junit.Assert;"},
		},
		{
			name: "fully qualified call",
			src: `import static org.hamcrest.CoreMatchers.is;

class T {
    void t() {
        org.junit.Assert.assertThat(1, is(1));
    }
}
`,
			want: `import static org.hamcrest.CoreMatchers.is;

class T {
    void t() {
        org.hamcrest.MatcherAssert.assertThat(1, is(1));
    }
}
`,
			migrated: 1,
		},
	}

	d := newDriver(t)
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := d.Run(parse(t, tc.src))

			require.Equal(t, tt.StateModified, res.Report.State)
			assert.Len(t, res.Report.Migrated, tc.migrated)
			assert.Empty(t, res.Report.Conflicts)
			assert.Zero(t, res.Report.Unresolved)
			assert.Equal(t, tc.added, namesOrNil(res.Report.Added))
			assert.Equal(t, tc.removed, namesOrNil(res.Report.Removed))
			assert.Equal(t, tc.want, string(javasrc.Render(res.Unit)))
		})
	}
}

func namesOrNil(list []tt.Import) []string {
	if len(list) == 0 {
		return nil
	}
	return names(list)
}

func TestDriverLeavesUnitUnchanged(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		src        string
		unresolved int
		conflicts  int
	}{
		{
			name: "no matcher factory",
			src: `import static org.junit.Assert.assertThat;
class T { void t() { assertThat(1, org.hamcrest.CoreMatchers.is(1)); } }
`,
		},
		{
			name: "already migrated",
			src:  migratedExample,
		},
		{
			name: "ambiguous on-demand imports",
			src: `import static org.hamcrest.CoreMatchers.*;
import static org.junit.Assert.*;
class T { void t() { assertThat(1, is(1)); } }
`,
			unresolved: 1,
		},
		{
			name: "local method",
			src: `import static org.hamcrest.CoreMatchers.is;
import static org.junit.Assert.assertThat;
class T {
    void t() { assertThat(1, is(1)); }
    void assertThat(Object a, Object b) { }
}
`,
			unresolved: 1,
		},
		{
			name: "replacement type name taken",
			src: `import com.acme.MatcherAssert;
import org.junit.Assert;
import static org.hamcrest.CoreMatchers.is;
class T { void t() { Assert.assertThat(1, is(1)); } }
`,
			conflicts: 1,
		},
	}

	d := newDriver(t)
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			unit := parse(t, tc.src)
			res := d.Run(unit)

			assert.Equal(t, tt.StateUnchanged, res.Report.State)
			assert.Same(t, unit, res.Unit)
			assert.Empty(t, res.Report.Migrated)
			assert.Equal(t, tc.unresolved, res.Report.Unresolved)
			assert.Len(t, res.Report.Conflicts, tc.conflicts)
			assert.Equal(t, tc.src, string(javasrc.Render(res.Unit)))
		})
	}
}

func TestDriverSkip(t *testing.T) {
	t.Parallel()
	src := `import static org.hamcrest.CoreMatchers.is;
import static org.junit.Assert.assertThat;

class T {
    void t() {
        assertThat(1, is(1));
        assertThat(2, is(2));
    }
}
`
	tests := []struct {
		name       string
		skipLine   int
		state      tt.State
		suppressed int
		conflicts  int
	}{
		{name: "nothing skipped", state: tt.StateModified},
		{name: "one call site skipped", skipLine: 6, state: tt.StateUnchanged, suppressed: 1, conflicts: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := newDriver(t, WithSkip(func(inv *tt.Invocation) bool {
				return inv.Start.Line == tc.skipLine
			}))
			res := d.Run(parse(t, src))

			assert.Equal(t, tc.state, res.Report.State)
			assert.Equal(t, tc.suppressed, res.Report.Suppressed)
			assert.Len(t, res.Report.Conflicts, tc.conflicts)
			if tc.state == tt.StateUnchanged {
				// the skipped call still needs the legacy import
				assert.Equal(t, src, string(javasrc.Render(res.Unit)))
			}
		})
	}
}

func TestDriverRunAll(t *testing.T) {
	t.Parallel()
	units := []*tt.CompilationUnit{
		parse(t, legacyExample),
		parse(t, migratedExample),
		parse(t, legacyExample),
	}

	results, err := newDriver(t, WithWorkers(2)).RunAll(context.Background(), units)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, tt.StateModified, results[0].Report.State)
	assert.Equal(t, tt.StateUnchanged, results[1].Report.State)
	assert.Equal(t, tt.StateModified, results[2].Report.State)
	for i, res := range results {
		if res.Report.State == tt.StateModified {
			assert.Equal(t, migratedExample, string(javasrc.Render(res.Unit)), "unit %d", i)
		}
	}
}

func TestDriverRunAllCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newDriver(t).RunAll(ctx, []*tt.CompilationUnit{parse(t, legacyExample)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDriverRejectsInvalidDefinition(t *testing.T) {
	t.Parallel()
	def := UseHamcrestAssertThat()
	def.MatcherFactories = nil

	_, err := NewDriver(def)
	assert.Error(t, err)
}
