package main

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func configPath(t *testing.T) string {
	return filepath.Join(repoRoot(t), "testdata", "deduce.yaml")
}

// run executes the root command and returns what it printed.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildEngine(t *testing.T) {
	engine, cleanup, err := buildEngine(configPath(t), nil)
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, engine)
	ok, err := engine.Ask("(ancestor ann dan)")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, engine.KB().Facts(), 17)
}

func TestBuildEngineNonExistentKnowledge(t *testing.T) {
	_, _, err := buildEngine("", []string{filepath.Join(t.TempDir(), "missing.kb")})
	assert.Error(t, err)
}

func TestBuildEngineNonExistentConfig(t *testing.T) {
	_, _, err := buildEngine(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestAskCommand(t *testing.T) {
	out, err := run(t, "", "--config", configPath(t), "ask", "(ancestor ann dan)")
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)

	out, err = run(t, "", "--config", configPath(t), "ask", "(ancestor dan ann)")
	require.NoError(t, err)
	assert.Equal(t, "no\n", out)
}

func TestQueryCommand(t *testing.T) {
	out, err := run(t, "", "--config", configPath(t), "query", "(mother ?m ?c)")
	require.NoError(t, err)

	assert.Equal(t, "?m = ann, ?c = bob\n?m = ann, ?c = eve\n?m = cat, ?c = dan\n", out)
}

func TestQueryCommandKBFlag(t *testing.T) {
	kb := filepath.Join(repoRoot(t), "testdata", "family.kb")

	out, err := run(t, "", "--kb", kb, "query", "(ancestor", "?a", "dan)")
	require.NoError(t, err)

	assert.Equal(t, "?a = ann\n?a = bob\n?a = cat\n", out)
}

func TestExplainCommand(t *testing.T) {
	out, err := run(t, "", "--config", configPath(t), "explain", "(mother ann bob)")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "(mother ann bob)\n"), out)
	assert.Contains(t, out, "from (female ann) [asserted]")
	assert.Contains(t, out, "via ((female ann)) -> (mother ann bob)")
}

func TestExplainCommandNotFound(t *testing.T) {
	_, err := run(t, "", "--config", configPath(t), "explain", "(mother bob cat)")
	assert.Error(t, err)
}

func TestDumpCommand(t *testing.T) {
	out, err := run(t, "", "--config", configPath(t), "dump", "--stats")
	require.NoError(t, err)

	assert.Contains(t, out, "Facts (17):")
	assert.Contains(t, out, "asserted (parent ann bob)")
	assert.Contains(t, out, "derived  (ancestor ann dan)")
	assert.Contains(t, out, "17 facts (7 asserted)")
	assert.Contains(t, out, `deduce_statements_asserted_total{kind=fact} 7`)
}

func TestReplSession(t *testing.T) {
	session := strings.Join([]string{
		"fact: (isa Bob boy);",
		"rule: ((isa ?x boy)) -> (cool ?x);",
		"ask (cool Bob)",
		"retract (cool Bob)",
		"retract fact: (isa Bob boy);",
		"ask (cool Bob)",
		"frobnicate",
		"quit",
		"ask (isa Bob boy)",
	}, "\n")

	out, err := run(t, session, "repl")
	require.NoError(t, err)

	assert.Contains(t, out, "stored (isa Bob boy)")
	assert.Contains(t, out, "stored ((isa ?x boy)) -> (cool ?x)")
	assert.Contains(t, out, "> yes\n")
	assert.Contains(t, out, "Error: retract fact (cool Bob): statement is supported by other statements")
	assert.Contains(t, out, "> retracted\n")
	assert.Contains(t, out, "> no\n")
	assert.Contains(t, out, `Error: unknown command "frobnicate"`)
	assert.Equal(t, 2, strings.Count(out, "> yes\n")+strings.Count(out, "> no\n"))
}

func TestExportCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.kb")

	_, err := run(t, "", "--config", configPath(t), "export", path)
	require.NoError(t, err)

	out, err := run(t, "", "--kb", path, "ask", "(ancestor ann dan)")
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}

func TestExportCommandStdout(t *testing.T) {
	out, err := run(t, "", "--config", configPath(t), "export")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "kb {\n"), out)
	assert.Contains(t, out, "    fact: (female eve);\n")
	assert.NotContains(t, out, "ancestor ann dan")
}

func TestReplSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.kb")
	session := "fact: (isa Bob boy);\nsave " + path + "\n"

	out, err := run(t, session, "repl")
	require.NoError(t, err)
	assert.Contains(t, out, "saved "+path)

	out, err = run(t, "", "--kb", path, "ask", "(isa Bob boy)")
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}
