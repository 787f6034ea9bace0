package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvpatch/internal/testutil"
)

// runCLI executes the root command with args and returns stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Keep the developer's own config and environment out of the run
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"CSVPATCH_LOG_LEVEL", "CSVPATCH_SEQ_URL", "CSVPATCH_NO_MATCH", "CSVPATCH_RAGGED", "CSVPATCH_BOM", "CSVPATCH_LINE_ENDING"} {
		t.Setenv(k, "")
	}

	a := &app{}
	defer a.close()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestSetCommand(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "issues.csv", testutil.IssuesCSV)

	out, err := runCLI(t, "set", path,
		"--key", "id=PMB-030",
		"--set", "dev_state=已完成",
		"--set", "notes=go build OK",
	)
	assert.NilError(t, err)

	assert.Assert(t, strings.Contains(out, "id=PMB-030: 1 row(s) matched"), out)
	assert.Assert(t, strings.Contains(out, "CSV updated: "+path+" (2 field(s) changed)"), out)
	assert.Assert(t, strings.Contains(testutil.ReadFile(t, path),
		"\"PMB-030\",\"favorite model\",\"已完成\",\"\",\"\",\"go build OK\"\r\n"))
}

func TestSetCommandDryRunPrintsDiff(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "status.csv", "id,status\nA,open\nB,open\n")

	out, err := runCLI(t, "set", path, "--dry-run", "--color", "never",
		"--key", "id=B", "--set", "status=WIP", "--line-ending", "lf")
	assert.NilError(t, err)

	assert.Assert(t, strings.Contains(out, "@@ line 3 @@"), out)
	assert.Assert(t, strings.Contains(out, `"B","[-open-]{+WIP+}"`), out)
	assert.Assert(t, !strings.Contains(out, "\x1b["), "unexpected color codes: %q", out)
	assert.Assert(t, strings.Contains(out, "dry run: "+path+" not written (1 field(s) would change)"), out)
	assert.Equal(t, testutil.ReadFile(t, path), "id,status\nA,open\nB,open\n")
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "status.csv", "id,status\nA,open\nB,open\n")
	patches := testutil.WriteFile(t, dir, "patches.yaml", `
patches:
  - name: close A
    key: id
    value: A
    set: {status: done}
  - where: 'status == "open"'
    set: {status: triaged}
`)
	dest := filepath.Join(dir, "out.csv")

	out, err := runCLI(t, "apply", path, "-p", patches, "--out", dest, "--line-ending", "lf", "--bom", "always")
	assert.NilError(t, err)

	assert.Assert(t, strings.Contains(out, "close A: 1 row(s) matched"), out)
	assert.Assert(t, strings.Contains(out, `status == "open": 1 row(s) matched`), out)
	assert.Equal(t, testutil.ReadFile(t, dest), "\xEF\xBB\xBF\"id\",\"status\"\n\"A\",\"done\"\n\"B\",\"triaged\"\n")
}

func TestApplyCommandStrictNoMatch(t *testing.T) {
	dir := t.TempDir()
	const original = "id,status\nA,open\n"
	path := testutil.WriteFile(t, dir, "status.csv", original)
	patches := testutil.WriteFile(t, dir, "patches.yaml", "patches:\n  - {key: id, value: Z, set: {status: done}}\n")

	out, err := runCLI(t, "apply", path, "-p", patches, "--no-match", "fail")

	assert.ErrorContains(t, err, "matched no rows")
	assert.Assert(t, strings.Contains(out, "WARNING: id=Z: no rows matched"), out)
	assert.Assert(t, strings.Contains(out, "CSV not written"), out)
	assert.Equal(t, testutil.ReadFile(t, path), original)
}

func TestApplyCommandRequiresPatches(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "status.csv", "id,status\nA,open\n")

	_, err := runCLI(t, "apply", path)
	assert.ErrorContains(t, err, "patches")
}

func TestShowCommand(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "issues.csv", testutil.IssuesCSV)

	out, err := runCLI(t, "show", path, "--where", `dev_state != "已完成"`, "--columns", "id,dev_state")
	assert.NilError(t, err)

	assert.Assert(t, strings.Contains(out, "PMB-030"), out)
	assert.Assert(t, strings.Contains(out, "PMB-050"), out)
	assert.Assert(t, !strings.Contains(out, "PMB-010"), out)
	assert.Assert(t, !strings.Contains(out, "favorite model"), out)
	assert.Assert(t, strings.Contains(out, "(3 row(s))"), out)
}

func TestShowCommandUnknownKeyColumn(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "issues.csv", testutil.IssuesCSV)

	_, err := runCLI(t, "show", path, "--key", "ticket=PMB-030")
	assert.ErrorContains(t, err, "column not in header")
}

func TestInvalidPolicyFlags(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "status.csv", "id,status\nA,open\n")

	_, err := runCLI(t, "set", path, "--key", "id=A", "--set", "status=done", "--bom", "sometimes")
	assert.ErrorContains(t, err, "unknown BOM policy")

	_, err = runCLI(t, "set", path, "--key", "id=A", "--set", "status=done", "--color", "rainbow")
	assert.ErrorContains(t, err, "unknown color mode")

	_, err = runCLI(t, "version", "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	assert.NilError(t, err)
	assert.Equal(t, out, "csvpatch dev (none)\n")
}

func TestBuildPatch(t *testing.T) {
	p, err := buildPatch("n", "id=PMB-030", "", []string{"dev_state=done", "notes=a=b"})
	assert.NilError(t, err)
	assert.Equal(t, p.Key, "id")
	assert.Equal(t, p.Value, "PMB-030")
	assert.DeepEqual(t, p.Set, map[string]string{"dev_state": "done", "notes": "a=b"})

	_, err = buildPatch("", "id", "", []string{"a=b"})
	assert.ErrorContains(t, err, "--key")

	_, err = buildPatch("", "id=1", "", []string{"a=b", "a=c"})
	assert.ErrorContains(t, err, "assigned twice")

	_, err = buildPatch("", "id=1", "", []string{"novalue"})
	assert.ErrorContains(t, err, "--set")
}
