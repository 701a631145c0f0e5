package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duet = "testdata/duet.mei"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSelect_Stdout(t *testing.T) {
	out, err := execute(t, "select", duet, "3/1/@1-2")
	require.NoError(t, err)

	assert.Contains(t, out, `xml:id="m3"`)
	assert.NotContains(t, out, `xml:id="m1"`)
	assert.Contains(t, out, `xml:id="f8"`)
	assert.Contains(t, out, `xml:id="f9"`, "onset on beat 2 is inside")
	assert.NotContains(t, out, `xml:id="c4"`)
	assert.Contains(t, out, `<?xml-model`, "prolog is preserved")
}

func TestSelect_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mei")
	_, err := execute(t, "select", duet, "1/all/@2-3/highlight", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `plist="#f2 #f3 #c2"`)
}

func TestSelect_SeveralSelectors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	out, err := execute(t, "select", duet, "1/all/@all", "2-3/2/@all", "all/all/@1/highlight", "-o", dir, "-p", "2")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "01_1_all_all.mei", entries[0].Name())
	assert.Equal(t, 3, strings.Count(out, "\n"))

	second, err := os.ReadFile(filepath.Join(dir, entries[1].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(second), `xml:id="c3"`)
	assert.NotContains(t, string(second), `xml:id="r1"`)
}

func TestSelect_Errors(t *testing.T) {
	_, err := execute(t, "select", duet, "9/all/@all")
	assert.ErrorContains(t, err, "out of range")

	_, err = execute(t, "select", duet, "1/all/@all", "2/all/@all")
	assert.ErrorContains(t, err, "-o")

	_, err = execute(t, "select", "testdata/missing.mei", "1/all/@all")
	assert.Error(t, err)

	_, err = execute(t, "select", duet)
	assert.Error(t, err)
}

func TestSelect_Stdin(t *testing.T) {
	data, err := os.ReadFile(duet)
	require.NoError(t, err)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(bytes.NewReader(data))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"select", "-", "2/all/@all"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `xml:id="r1"`)
}

func TestInfo_Table(t *testing.T) {
	out, err := execute(t, "info", duet)
	require.NoError(t, err)

	assert.Contains(t, out, "4/4")
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "Flute, Cello")
	assert.Contains(t, out, "3 MEASURES")
}

func TestInfo_Markdown(t *testing.T) {
	out, err := execute(t, "info", duet, "--markdown")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# duet.mei\n"))
	assert.Contains(t, out, "| 3 | 3 | 3/4 |")
	assert.Contains(t, out, "| 1 | 1 | 1 | Flute |")
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "02_1-2_all_1-1.5_highlight.mei", outputName(1, "1-2/all/@1-1.5/highlight"))
}
