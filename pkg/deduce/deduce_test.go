package deduce

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTellAskRetract(t *testing.T) {
	e := New(Options{})

	_, err := e.Tell("fact: (isa Bob boy);")
	require.NoError(t, err)
	_, err = e.Tell("rule: ((isa ?x boy)) -> (cool ?x);")
	require.NoError(t, err)

	ok, err := e.Ask("(cool Bob)")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, e.Retract("(cool Bob)"), internalerr.ErrUnsupportable)
	require.NoError(t, e.Retract("fact: (isa Bob boy);"))

	ok, err = e.Ask("fact: (cool Bob);")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTellDuplicate(t *testing.T) {
	e := New(Options{})
	_, err := e.Tell("fact: (isa Bob boy);")
	require.NoError(t, err)

	_, err = e.Tell("fact: (isa Bob boy);")
	assert.ErrorIs(t, err, internalerr.ErrDuplicate)
}

func TestTellParseError(t *testing.T) {
	e := New(Options{})

	_, err := e.Tell("fact: isa Bob boy")
	assert.ErrorIs(t, err, internalerr.ErrParse)

	_, err = e.Ask("(isa Bob")
	assert.ErrorIs(t, err, internalerr.ErrParse)
}

func TestQuerySorted(t *testing.T) {
	e := New(Options{})
	for _, text := range []string{
		"fact: (isa Tom boy);",
		"fact: (isa Ann girl);",
		"fact: (isa Bob boy);",
	} {
		_, err := e.Tell(text)
		require.NoError(t, err)
	}

	got, err := e.Query("(isa ?who boy)")
	require.NoError(t, err)

	assert.Equal(t, "?who = Bob\n?who = Tom", FormatBindings(got))
}

func TestFormatBindings(t *testing.T) {
	e := New(Options{})
	_, err := e.Tell("fact: (isa Bob boy);")
	require.NoError(t, err)

	yes, err := e.Query("(isa Bob boy)")
	require.NoError(t, err)
	assert.Equal(t, "yes", FormatBindings(yes))

	no, err := e.Query("(isa Tom ?x)")
	require.NoError(t, err)
	assert.Equal(t, "no", FormatBindings(no))
}

func TestExplainRule(t *testing.T) {
	e := New(Options{})
	_, err := e.Tell("fact: (isa Bob boy);")
	require.NoError(t, err)
	_, err = e.Tell("rule: ((isa ?x boy) (was ?x ?y)) -> (cool ?y);")
	require.NoError(t, err)

	j, err := e.Explain("((was Bob ?y)) -> (cool ?y)")
	require.NoError(t, err)
	assert.Equal(t, 1, j.Depth())

	_, err = e.Explain("(cool Bob)")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestMetricsOption(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPrometheus(reg, "")
	require.NoError(t, err)
	e := New(Options{Metrics: rec})

	_, err = e.Tell("fact: (isa Bob boy);")
	require.NoError(t, err)
	_, _ = e.Tell("fact: (isa Bob boy);")

	count, err := testutil.GatherAndCount(reg, "deduce_statements_rejected_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpenAndLoad(t *testing.T) {
	dir := t.TempDir()
	kbPath := filepath.Join(dir, "family.kb")
	require.NoError(t, os.WriteFile(kbPath, []byte(strings.Join([]string{
		"kb {",
		"  fact: (parent ann bob);",
		"  rule: ((parent ?x ?y)) -> (ancestor ?x ?y);",
		"}",
	}, "\n")), 0644))
	cfgPath := filepath.Join(dir, "deduce.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\nmetrics:\n  enabled: true\n"), 0644))

	e, err := Open(cfgPath, kbPath)
	require.NoError(t, err)
	defer e.Close()

	assert.NotNil(t, e.Registry())
	assert.Equal(t, []string{cfgPath, kbPath}, e.Sources())
	ok, err := e.Ask("(ancestor ann bob)")
	require.NoError(t, err)
	assert.True(t, ok)

	more := filepath.Join(dir, "more.kb")
	require.NoError(t, os.WriteFile(more, []byte("fact: (parent bob cat)\n"), 0644))
	res, err := e.Load(more)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Facts)
	assert.Len(t, e.KB().Facts(), 4)
}

func TestOpenMissingKnowledge(t *testing.T) {
	_, err := Open("", "/nonexistent/family.kb")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
