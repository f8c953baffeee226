package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const schemaFile = `
[[types]]
name = "Token"
aliases = ["T"]
properties = { pos = "string" }

[[rules]]
name = "np"
pattern = 'T{pos="DET"} T{pos="ADJ"}* T{pos="NOUN"}'
output = "NounPhrase"
`

const docFile = `
text: "the big dog"
labels:
  - {type: T, begin: 0, end: 3, attrs: {pos: DET}}
  - {type: T, begin: 4, end: 7, attrs: {pos: ADJ}}
  - {type: T, begin: 8, end: 11, attrs: {pos: NOUN}}
`

type testFiles struct {
	dir    string
	schema string
}

func setupFiles(t *testing.T) testFiles {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"schema.toml":     schemaFile,
		"docs/a.yaml":     docFile,
		"docs/plain.yaml": "text: Cats chase dogs.\n",
		"docs/bad.yaml":   "text: [unclosed\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return testFiles{dir: dir, schema: filepath.Join(dir, "schema.toml")}
}

func (f testFiles) path(name string) string {
	return filepath.Join(f.dir, filepath.FromSlash(name))
}

func runCmd(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(context.Background(), append([]string{"labelgrep"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Match(t *testing.T) {
	f := setupFiles(t)
	doc := f.path("docs/a.yaml")

	code, out, stderr := runCmd("--schema", f.schema, "--pattern", `[?T{pos="ADJ"}] T{pos="NOUN"}`, doc)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, doc+":[4, 11) big dog\n", out)
}

func TestRun_Group(t *testing.T) {
	f := setupFiles(t)
	doc := f.path("docs/a.yaml")

	code, out, stderr := runCmd("--schema", f.schema, "--group", "n",
		"--pattern", `[?T{pos="DET"}] T{pos="ADJ"}* (?<n>T{pos="NOUN"})`, doc)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, doc+":[8, 11) dog\n", out)

	code, _, stderr = runCmd("--schema", f.schema, "--group", "missing", "--pattern", `T`, doc)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, `unknown group "missing"`)
}

func TestRun_SchemaRules(t *testing.T) {
	f := setupFiles(t)
	doc := f.path("docs/a.yaml")

	code, out, stderr := runCmd("--schema", f.schema, "--pattern", `[?NounPhrase]`, doc)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, doc+":[0, 11) the big dog\n", out)
}

func TestRun_Tokenize(t *testing.T) {
	f := setupFiles(t)
	doc := f.path("docs/plain.yaml")

	code, out, stderr := runCmd("--tokenize", "--verbose", "--pattern", `[?Token{stem="dog"}]`, doc)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, doc+":[11, 15) dogs\n", out)
	assert.Contains(t, stderr, "searched")

	code, _, stderr = runCmd("--tokenize", "--schema", f.schema, "--pattern", `Token`, doc)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "already declared")
}

func TestRun_NoMatch(t *testing.T) {
	f := setupFiles(t)
	code, out, stderr := runCmd("--schema", f.schema, "--pattern", `[?T{pos="VERB"}]`, f.path("docs/a.yaml"))
	assert.Equal(t, exitNoMatch, code)
	assert.Empty(t, out)
	assert.Empty(t, stderr)
}

func TestRun_Glob(t *testing.T) {
	f := setupFiles(t)
	code, out, stderr := runCmd("--schema", f.schema, "--pattern", `[?T{pos="DET"}]`, f.path("docs/*.yaml"))
	assert.Equal(t, exitError, code, "bad.yaml fails to decode")
	assert.Contains(t, stderr, "bad.yaml")
	assert.Contains(t, out, f.path("docs/a.yaml")+":[0, 3) the\n")
}

func TestRun_Errors(t *testing.T) {
	f := setupFiles(t)
	doc := f.path("docs/a.yaml")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad pattern", []string{"--schema", f.schema, "--pattern", `T{pos=`, doc}, "labelgrep:"},
		{"unknown type", []string{"--schema", f.schema, "--pattern", `Nope`, doc}, "Nope"},
		{"missing schema", []string{"--schema", f.path("none.toml"), "--pattern", `T`, doc}, "none.toml"},
		{"missing file", []string{"--schema", f.schema, "--pattern", `T`, f.path("none.yaml")}, "none.yaml"},
		{"no files", []string{"--schema", f.schema, "--pattern", `T`}, "no input files"},
		{"no pattern", []string{"--schema", f.schema, doc}, "pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCmd(tt.args...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}
