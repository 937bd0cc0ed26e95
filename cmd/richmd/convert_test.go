package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   string
		want string
	}{
		{"markdown to markdown", nil, "**Bold **Normal", "**Bold** Normal\n"},
		{"markdown to html", []string{"-to", "html"}, "# T\n- a\n- b", "<h1>T</h1>\n<ul><li>a</li><li>b</li></ul>\n"},
		{"html to markdown", []string{"-from", "html"}, "<p><em>x</em> y</p>", "*x* y\n"},
		{"text", []string{"-to", "text"}, "1. one\n2. two", "1. one\n2. two\n"},
		{"words", []string{"-to", "words"}, "Hi, you", "[0,2)\tHi\n[4,7)\tyou\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, run(context.Background(), tt.args, strings.NewReader(tt.in), &out))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunRuns(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-to", "runs"}, strings.NewReader("a **b** [c](u)"), &out))
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "text\tbold")
	assert.Contains(t, lines[3], "link\tplain")
}

func TestRunDictionary(t *testing.T) {
	dir := t.TempDir()
	dict := filepath.Join(dir, "words")
	require.NoError(t, os.WriteFile(dict, []byte("hello\nworld\n"), 0o644))
	doc := filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(doc, []byte("<p>hello wrold</p>"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-dict", dict, "-to", "html", doc}, nil, &out))
	assert.Equal(t, "<p>hello <span class=\"misspelled\">wrold</span></p>\n", out.String())
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"a", "b"}, nil, &out)
	assert.ErrorIs(t, err, errUsage)

	err = run(context.Background(), []string{"-to", "pdf"}, strings.NewReader("x"), &out)
	assert.ErrorContains(t, err, "unknown output format")

	err = run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.md")}, nil, &out)
	assert.Error(t, err)
}
