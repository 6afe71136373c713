package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	tt "github.com/gnolang/jmig/internal/types"
)

const legacySource = `package org.example;

import static org.hamcrest.CoreMatchers.is;
import static org.junit.Assert.assertThat;

class Test {
    void test() {
        assertThat(1 + 1, is(2));
    }
}
`

const migratedSource = `package org.example;

import static org.hamcrest.CoreMatchers.is;
import static org.hamcrest.MatcherAssert.assertThat;

class Test {
    void test() {
        assertThat(1 + 1, is(2));
    }
}
`

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()
	config, err := LoadConfig(filepath.Join(t.TempDir(), DefaultConfigFile))
	require.NoError(t, err)
	assert.Empty(t, config.Recipes)

	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, config.Recipes)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	content := `name: project
recipes:
  use-hamcrest-assert-that:
    enabled: false
  use-assertj:
    legacy: org.junit.Assert.assertEquals
    replacement: org.example.Checks.assertEquals
    matcher-factories:
      - org.example.Matchers
ignore:
  - generated/
cache:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "project", config.Name)
	assert.False(t, config.Recipes["use-hamcrest-assert-that"].IsEnabled())
	assert.True(t, config.Recipes["use-assertj"].IsEnabled())
	assert.Equal(t, []string{"org.example.Matchers"}, config.Recipes["use-assertj"].MatcherFactories)
	assert.Equal(t, []string{"generated/"}, config.Ignore)
	assert.True(t, config.Cache.Enabled)
}

func TestLoadConfigUnknownField(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("rules: {}\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestWriteDefaultConfigRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	require.NoError(t, WriteConfig(path, DefaultConfig()))
	config, err := LoadConfig(path)
	require.NoError(t, err)

	rc, ok := config.Recipes["use-hamcrest-assert-that"]
	require.True(t, ok)
	assert.True(t, rc.IsEnabled())
	assert.Equal(t, "org.junit.Assert.assertThat", rc.Legacy)
	assert.Equal(t, "org.hamcrest.MatcherAssert.assertThat", rc.Replacement)

	// a written default configuration must build an engine
	_, err = New(t.TempDir(), path, nil)
	assert.NoError(t, err)
}

func TestNewEngineMigratesFile(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	file := filepath.Join(root, "Test.java")
	require.NoError(t, os.WriteFile(file, []byte(legacySource), 0o644))

	engine, err := New(root, filepath.Join(root, DefaultConfigFile), zap.NewNop())
	require.NoError(t, err)

	results, err := ProcessPath(context.Background(), nil, engine, root, ProcessFile)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].Modified())
	assert.Equal(t, migratedSource, string(results[0].Output))
	require.Len(t, results[0].Reports, 1)
	assert.Equal(t, tt.StateModified, results[0].Reports[0].State)
}

func TestNewEngineHonorsConfig(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "generated"), 0o755))
	ignored := filepath.Join(root, "generated", "Gen.java")
	require.NoError(t, os.WriteFile(ignored, []byte(legacySource), 0o644))
	kept := filepath.Join(root, "Test.java")
	require.NoError(t, os.WriteFile(kept, []byte(legacySource), 0o644))

	cfg := filepath.Join(root, DefaultConfigFile)
	require.NoError(t, os.WriteFile(cfg, []byte("ignore:\n  - generated/\ncache:\n  enabled: true\n"), 0o644))

	engine, err := New(root, cfg, nil)
	require.NoError(t, err)
	defer engine.Close()

	results, err := ProcessPath(context.Background(), nil, engine, root, ProcessFile)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, kept, results[0].Filename)

	_, err = os.Stat(filepath.Join(root, DefaultCacheDir))
	assert.NoError(t, err)
}

func TestNewEngineDisabledRecipe(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	cfg := filepath.Join(root, DefaultConfigFile)
	require.NoError(t, os.WriteFile(cfg, []byte("recipes:\n  use-hamcrest-assert-that:\n    enabled: false\n"), 0o644))

	engine, err := New(root, cfg, nil)
	require.NoError(t, err)

	result, err := ProcessSource(engine, []byte(legacySource))
	require.NoError(t, err)
	assert.False(t, result.Modified())
	assert.Empty(t, result.Reports)
}
