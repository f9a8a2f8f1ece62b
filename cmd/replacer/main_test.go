package main

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/replacer/pkg/config"
	"github.com/orneryd/replacer/pkg/replace"
	"github.com/orneryd/replacer/pkg/storage"
)

// execute runs the CLI with args against a missing config file and returns
// its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	cmd := newRootCmd(a)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))

	err := cmd.Execute()
	a.teardown()
	return out.String(), err
}

func TestReplaceCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"replace", []string{"replace", "--old", "1", "--new", "4", "1", "2", "1", "3", "2"}, "4 2 4 3 2"},
		{"replace comma list", []string{"replace", "--old", "2", "--new", "5", "4,2,4,3,2"}, "4 5 4 3 5"},
		{"replace empty", []string{"replace", "--old", "2", "--new", "5"}, ""},
		{"replace-copy", []string{"replace-copy", "--old", "1", "--new", "4", "1", "2", "1"}, "4 2 4"},
		{"replace-copy count", []string{"replace-copy", "--count", "--old", "1", "--new", "4", "1", "2", "1", "3", "2"}, "5"},
		{"replace-if", []string{"replace-if", "--op", "lt", "--than", "5", "--new", "0", "1", "3", "4", "6", "5"}, "0 0 0 6 5"},
		{"replace-if stencil", []string{"replace-if", "--op", "lt", "--than", "5", "--new", "0", "--stencil", "5,4,6,3,7", "1", "3", "4", "6", "5"}, "1 0 4 0 5"},
		{"replace-copy-if", []string{"replace-copy-if", "--op", "ge", "--than", "5", "--new", "9", "1", "3", "4", "6", "5"}, "1 3 4 9 9"},
		{"replace-copy-if stencil", []string{"replace-copy-if", "--op", "lt", "--than", "5", "--new", "0", "--stencil", "1,5,4,7,8", "1", "3", "4", "6", "5"}, "0 3 0 6 5"},
		{"replace-copy-if count", []string{"replace-copy-if", "--count", "--op", "lt", "--than", "5", "--new", "0", "--stencil", "1,5,4,7,8", "1", "3", "4", "6", "5"}, "5"},
		{"fractions", []string{"replace-if", "--op", "gt", "--than", "0.5", "--new", "0.25", "0.1", "0.75"}, "0.1 0.25"},
	}

	for _, backend := range []string{config.BackendHost, config.BackendParallel, config.BackendGPU} {
		for _, tt := range tests {
			t.Run(backend+"/"+tt.name, func(t *testing.T) {
				out, err := execute(t, append([]string{"--backend", backend, "--workers", "2"}, tt.args...)...)
				require.NoError(t, err)
				assert.Equal(t, tt.want+"\n", out)
			})
		}
	}
}

func TestStoreWorkflow(t *testing.T) {
	data := "--data=" + t.TempDir()

	out, err := execute(t, data, "put", "scores", "1", "3", "4", "6", "5")
	require.NoError(t, err)
	assert.Equal(t, "stored scores (5 values)\n", out)

	_, err = execute(t, data, "put", "mask", "1,5,4,7,8")
	require.NoError(t, err)

	out, err = execute(t, data, "replace-copy-if", "--name", "scores", "--stencil-name", "mask", "--into", "low", "--op", "lt", "--than", "5", "--new", "0")
	require.NoError(t, err)
	assert.Equal(t, "0 3 0 6 5\n", out)

	out, err = execute(t, data, "get", "scores")
	require.NoError(t, err)
	assert.Equal(t, "1 3 4 6 5\n", out, "copy variants leave the source alone")

	out, err = execute(t, data, "get", "low")
	require.NoError(t, err)
	assert.Equal(t, "0 3 0 6 5\n", out)

	out, err = execute(t, data, "--backend", "gpu", "replace", "--name", "scores", "--old", "4", "--new", "40")
	require.NoError(t, err)
	assert.Equal(t, "1 3 40 6 5\n", out)

	out, err = execute(t, data, "get", "scores")
	require.NoError(t, err)
	assert.Equal(t, "1 3 40 6 5\n", out, "in-place commands rewrite the stored sequence")

	out, err = execute(t, data, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "low"))
	assert.True(t, strings.HasPrefix(lines[1], "mask"))
	assert.True(t, strings.HasPrefix(lines[2], "scores"))

	out, err = execute(t, data, "delete", "mask")
	require.NoError(t, err)
	assert.Equal(t, "deleted mask\n", out)

	_, err = execute(t, data, "get", "mask")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCommandErrors(t *testing.T) {
	data := "--data=" + t.TempDir()
	_, err := execute(t, data, "put", "seq", "1", "2")
	require.NoError(t, err)

	t.Run("unknown operator", func(t *testing.T) {
		_, err := execute(t, "replace-if", "--op", "approx", "1")
		assert.ErrorIs(t, err, errUnknownOp)
	})

	t.Run("name and values", func(t *testing.T) {
		_, err := execute(t, data, "replace", "--name", "seq", "--old", "1", "3")
		assert.ErrorIs(t, err, errNameAndArgs)
		_, err = execute(t, data, "replace-copy", "--name", "seq", "--old", "1", "3")
		assert.ErrorIs(t, err, errNameAndArgs)
	})

	t.Run("two stencils", func(t *testing.T) {
		_, err := execute(t, data, "replace-if", "--stencil", "1,2", "--stencil-name", "seq", "1", "2")
		assert.ErrorIs(t, err, errTwoStencils)
	})

	t.Run("stencil length", func(t *testing.T) {
		_, err := execute(t, "replace-if", "--stencil", "1,2", "1", "2", "3")
		assert.ErrorIs(t, err, replace.ErrLengthMismatch)
	})

	t.Run("count with into", func(t *testing.T) {
		_, err := execute(t, "replace-copy", "--count", "--into", "x", "--old", "1", "1")
		assert.ErrorIs(t, err, errIntoAndCount)
	})

	t.Run("bad backend", func(t *testing.T) {
		_, err := execute(t, "--backend", "abacus", "info")
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("bad value", func(t *testing.T) {
		_, err := execute(t, "replace", "--old", "1", "one")
		assert.Error(t, err)
	})

	t.Run("missing old", func(t *testing.T) {
		_, err := execute(t, "replace", "1", "2")
		assert.Error(t, err)
	})

	t.Run("missing stored sequence", func(t *testing.T) {
		_, err := execute(t, data, "replace", "--name", "ghost", "--old", "1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestInfo(t *testing.T) {
	out, err := execute(t, "--backend", "gpu", "--workers", "3", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "system:")
	assert.Contains(t, out, "workers:    3")
	assert.Contains(t, out, "device:")

	out, err = execute(t, "--backend", "host", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "host")
	assert.NotContains(t, out, "device:")
}

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		op   string
		in   float64
		want bool
	}{
		{"lt", 4, true}, {"lt", 5, false},
		{"le", 5, true}, {"le", 6, false},
		{"gt", 6, true}, {"gt", 5, false},
		{"ge", 5, true}, {"ge", 4, false},
		{"eq", 5, true}, {"eq", 4, false},
		{"ne", 4, true}, {"ne", 5, false},
		{"<", 4, true}, {">=", 5, true}, {"EQ", 5, true},
	}
	for _, tt := range tests {
		pred, err := parsePredicate(tt.op, 5)
		require.NoError(t, err, tt.op)
		assert.Equal(t, tt.want, pred(tt.in), "%s %v 5", tt.op, tt.in)
	}

	_, err := parsePredicate("~", 5)
	assert.ErrorIs(t, err, errUnknownOp)
}

func TestParseAndFormatValues(t *testing.T) {
	values, err := parseValues([]string{"1", "2.5,3", " 4 ,", "-0", "1e3"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5, 3, 4, math.Copysign(0, -1), 1000}, values)

	_, err = parseValues([]string{"1", "x"})
	assert.Error(t, err)

	assert.Equal(t, "1 2.5 -3 1e+21", formatValues([]float64{1, 2.5, -3, 1e21}))
	assert.Equal(t, "", formatValues(nil))
}
