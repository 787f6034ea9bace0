package config

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
)

func TestLoadMissingOptionalFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"), true)
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, Default())
}

func TestLoadMissingRequiredFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"), false)
	assert.ErrorContains(t, err, "read config")
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("no-match: fail\nline-ending: lf\nseq-url: http://seq:5341\n"), 0600))

	cfg, err := Load(path, false)
	assert.NilError(t, err)

	want := Default()
	want.NoMatch = "fail"
	want.LineEnding = "lf"
	want.SeqURL = "http://seq:5341"
	assert.DeepEqual(t, cfg, want)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("bom: [\n"), 0600))

	_, err := Load(path, false)
	assert.ErrorContains(t, err, "parse config")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CSVPATCH_LOG_LEVEL": "debug",
		"CSVPATCH_BOM":       "never",
	}

	cfg := Default()
	cfg.NoMatch = "fail"
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, cfg.LogLevel, "debug")
	assert.Equal(t, cfg.BOM, "never")
	assert.Equal(t, cfg.NoMatch, "fail")
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("", false)
	assert.NilError(t, err)
	assert.DeepEqual(t, cfg, Default())
}
