package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunflower-search/sunflower/pkg/config"
	"github.com/sunflower-search/sunflower/pkg/family"
	"github.com/sunflower-search/sunflower/pkg/search"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func load(t *testing.T, path string) *family.Family {
	t.Helper()
	f, err := family.Load(path)
	require.NoError(t, err)
	return f
}

func TestExactWritesFamily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycle.json")
	out, err := execute(t, "exact", "-n", "2", "-U", "5", "-m", "5", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Found family")

	f := load(t, path)
	assert.Equal(t, "exact", f.Strategy)
	assert.Equal(t, 5, f.M)

	out, err = execute(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Family Size: 5\nSunflower-free: YES\n")
}

func TestExactInfeasible(t *testing.T) {
	out, err := execute(t, "exact", "-n", "2", "-U", "5", "-m", "6", "--solver", "bruteforce", "-o", filepath.Join(t.TempDir(), "none.json"))
	var infeasible search.Infeasible
	require.True(t, errors.As(err, &infeasible), "expected Infeasible, got %v", err)
	assert.Contains(t, out, "no 3-sunflower-free family of 6 sets")
}

func TestExactRejectsOversizedTarget(t *testing.T) {
	_, err := execute(t, "exact", "-n", "2", "-U", "4", "-m", "7")
	var cerr *config.ConfigurationError
	require.True(t, errors.As(err, &cerr), "expected ConfigurationError, got %v", err)
	assert.Equal(t, "m", cerr.Field)
}

func TestConfigFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("n: 2\nuniverse: 5\ntarget: 3\nsolver: bruteforce\n"), 0o644))

	path := filepath.Join(dir, "out.yaml")
	_, err := execute(t, "exact", "--config", cfg, "-o", path)
	require.NoError(t, err)
	assert.Equal(t, 3, load(t, path).M)

	// environment overrides the file, flags override both
	t.Setenv("SUNFLOWER_TARGET", "4")
	_, err = execute(t, "exact", "--config", cfg, "-o", path)
	require.NoError(t, err)
	assert.Equal(t, 4, load(t, path).M)

	_, err = execute(t, "exact", "--config", cfg, "-m", "2", "-o", path)
	require.NoError(t, err)
	assert.Equal(t, 2, load(t, path).M)
}

func TestAnnealWritesFamily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anneal.json")
	out, err := execute(t, "anneal", "-n", "2", "-U", "6", "-m", "5", "--steps", "100000", "--seed", "3", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "SUCCESS")

	f := load(t, path)
	assert.Equal(t, "anneal", f.Strategy)

	out, err = execute(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Sunflower-free: YES")
}

func TestAnnealKeepsBestFamilyOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best.json")
	out, err := execute(t, "anneal", "-n", "2", "-U", "4", "-m", "6", "--steps", "10", "-o", path)
	var exhausted search.BudgetExhausted
	require.True(t, errors.As(err, &exhausted), "expected BudgetExhausted, got %v", err)
	assert.Contains(t, out, "FAILURE: best energy 4")
	assert.Equal(t, 6, load(t, path).M)
}

func TestSearchCommandDefaults(t *testing.T) {
	root := newRootCmd()
	for _, tt := range []struct {
		command  string
		universe string
		target   string
	}{
		{command: "exact", universe: "7", target: "20"},
		{command: "anneal", universe: "20", target: "19"},
	} {
		t.Run(tt.command, func(t *testing.T) {
			cmd, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			assert.Equal(t, "3", cmd.Flags().Lookup("n").DefValue)
			assert.Equal(t, tt.universe, cmd.Flags().Lookup("universe").DefValue)
			assert.Equal(t, tt.target, cmd.Flags().Lookup("target").DefValue)
		})
	}
}

func TestAnnealUsesItsOwnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.json")
	_, err := execute(t, "anneal", "--steps", "0", "-o", path)
	if err != nil {
		var exhausted search.BudgetExhausted
		require.True(t, errors.As(err, &exhausted), "expected success or BudgetExhausted, got %v", err)
	}

	f := load(t, path)
	assert.Equal(t, 3, f.N)
	assert.Equal(t, 20, f.U)
	assert.Equal(t, 19, f.M)
}

func TestAnnealRejectsOtherK(t *testing.T) {
	_, err := execute(t, "anneal", "-k", "4", "-n", "2", "-U", "6", "-m", "3")
	var cerr *config.ConfigurationError
	require.True(t, errors.As(err, &cerr), "expected ConfigurationError, got %v", err)
	assert.Equal(t, "k", cerr.Field)
}

func TestAnalyzeOverridesK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "star.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"n": 2, "k": 3, "U": 5, "m": 3, "family": [[0, 1], [0, 2], [0, 3]]}`), 0o644))

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Number of 3-sunflowers: 1")

	out, err = execute(t, "analyze", "-k", "2", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Number of 2-sunflowers: 3")

	_, err = execute(t, "analyze", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Sunflower Version:")
}
