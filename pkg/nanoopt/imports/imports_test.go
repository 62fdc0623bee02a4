package imports

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/classpath"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/conditions"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/logging"
	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// sliceSource keeps duplicates, which a map cannot.
type sliceSource []types.Outcome

func (s sliceSource) Entries() []types.Outcome { return s }

func catalog(public []string, nonPublic ...string) *classpath.Catalog {
	c := classpath.NewCatalog()
	for _, n := range public {
		c.Add(n, classpath.AccPublic|classpath.AccSuper)
	}
	for _, n := range nonPublic {
		c.Add(n, classpath.AccPublic|classpath.AccFinal)
	}
	return c
}

func TestBuild_Filters(t *testing.T) {
	src := conditions.Map{
		"com.example.WebConfig":        true,
		"com.example.DbConfig":         false,
		"com.example.WebConfig#filter": true,
		"com.example.Outer$Inner":      true,
		"com.example.FinalConfig":      true,
		"com.example.Missing":          true,
		"com.example.AConfig":          true,
	}
	cls := catalog(
		[]string{"com.example.WebConfig", "com.example.DbConfig", "com.example.AConfig", "com.example.Outer$Inner"},
		"com.example.FinalConfig",
	)

	got := Build(src, cls, logging.Discard())
	assert.Equal(t, []string{"com.example.AConfig", "com.example.WebConfig"}, got)
}

func TestBuild_SkipsMemberKeysRegardlessOfMatch(t *testing.T) {
	src := conditions.Map{"a.B#c": true, "a.B$C": true, "a.B#d": false}
	calls := 0
	cls := classpath.ClassifierFunc(func(string) (classpath.Visibility, error) {
		calls++
		return classpath.Public, nil
	})

	assert.Empty(t, Build(src, cls, logging.Discard()))
	assert.Zero(t, calls, "classifier consulted for filtered keys")
}

func TestBuild_Dedupes(t *testing.T) {
	src := sliceSource{
		{Key: "b.B", FullMatch: true},
		{Key: "a.A", FullMatch: true},
		{Key: "b.B", FullMatch: true},
	}
	got := Build(src, catalog([]string{"a.A", "b.B"}), logging.Discard())
	assert.Equal(t, []string{"a.A", "b.B"}, got)
}

func TestBuild_LogsUnresolved(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("imports", &buf, logging.LevelWarn)

	got := Build(conditions.Map{"x.Gone": true}, classpath.NewCatalog(), logger)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "x.Gone")
}

func TestBuild_ClassifierError(t *testing.T) {
	cls := classpath.ClassifierFunc(func(name string) (classpath.Visibility, error) {
		if name == "bad.Name" {
			return classpath.Public, fmt.Errorf("boom")
		}
		return classpath.Public, nil
	})
	got := Build(conditions.Map{"bad.Name": true, "good.Name": true}, cls, logging.Discard())
	assert.Equal(t, []string{"good.Name"}, got)
}

func TestBuild_Idempotent(t *testing.T) {
	src := conditions.Map{"c.C": true, "a.A": true, "b.B": true}
	cls := catalog([]string{"a.A", "b.B", "c.C"})

	first := Render(Build(src, cls, logging.Discard()), "\n")
	second := Render(Build(src, cls, logging.Discard()), "\n")
	assert.Equal(t, first, second)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		sep   string
		want  string
	}{
		{
			name:  "two entries",
			names: []string{"a.A", "b.B"},
			sep:   "\n",
			want:  "\n@Import({\na.A.class,\nb.B.class})",
		},
		{
			name:  "one entry",
			names: []string{"a.A"},
			sep:   "\n",
			want:  "\n@Import({\na.A.class})",
		},
		{
			name:  "windows separator",
			names: []string{"a.A", "b.B"},
			sep:   "\r\n",
			want:  "\r\n@Import({\r\na.A.class,\r\nb.B.class})",
		},
		{
			name: "empty",
			sep:  "\n",
			want: "\n@Import({\n})",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.names, tt.sep))
		})
	}
}

func TestRender_NoTrailingComma(t *testing.T) {
	out := Render([]string{"a.A", "b.B", "c.C"}, "\n")
	assert.False(t, strings.Contains(out, ",})"))
	assert.Equal(t, 2, strings.Count(out, ".class,"))
}
