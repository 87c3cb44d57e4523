package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zedseven/estegano"
	"github.com/zedseven/estegano/internal/config"
)

func TestParseAction(t *testing.T) {
	tests := map[string]action{
		"hide":   actionHide,
		"HIDE":   actionHide,
		"Unhide": actionUnhide,
		"clean":  actionClean,
	}
	for input, want := range tests {
		got, err := parseAction(input)
		if assert.NoError(t, err, "parseAction(%q)", input) {
			assert.Equal(t, want, got, "parseAction(%q)", input)
		}
	}
	_, err := parseAction("dig")
	assert.Error(t, err)
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"version"}, &stdout, &stderr))
	assert.Equal(t, "estegano v"+estegano.Version()+"\n", stdout.String())
}

func TestRunRequiresAction(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run(nil, &stdout, &stderr), "no action")
	assert.Error(t, run([]string{"--pass", "x", "--ask-pass", "hide"}, &stdout, &stderr), "--pass with --ask-pass")
}

func TestRunHideUnhideClean(t *testing.T) {
	t.Setenv(config.EnvVar, "")
	dir := t.TempDir()
	cover := image.NewGray(image.Rect(0, 0, 120, 120))
	for i := range cover.Pix {
		cover.Pix[i] = uint8(2 + i%252)
	}
	coverPath := filepath.Join(dir, "cover.png")
	f, err := os.Create(coverPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, cover))
	require.NoError(t, f.Close())
	secret := filepath.Join(dir, "plans.txt")
	require.NoError(t, os.WriteFile(secret, []byte("meet at the usual place"), 0o600))

	stego := filepath.Join(dir, "stego.png")
	out := filepath.Join(dir, "out")
	var stdout, stderr bytes.Buffer
	steps := [][]string{
		{"HIDE", "--in", coverPath, "--hide", secret, "--out", stego, "--pass", ""},
		{"unhide", "--in", stego, "--out", out, "--pass", ""},
	}
	for _, args := range steps {
		require.NoError(t, run(args, &stdout, &stderr), "run(%v)\n%s", args, stderr.String())
	}
	got, err := os.ReadFile(filepath.Join(out, "plans.txt"))
	require.NoError(t, err)
	assert.Equal(t, "meet at the usual place", string(got))

	// The empty password is a password: leaving it out must not work.
	assert.Error(t, run([]string{"unhide", "--in", stego, "--out", out}, &stdout, &stderr),
		"unhide without the empty password")

	require.NoError(t, run([]string{"clean", "--in", stego}, &stdout, &stderr))
	assert.ErrorIs(t, run([]string{"unhide", "--in", stego, "--out", out, "--pass", ""}, &stdout, &stderr),
		estegano.ErrAuthenticationFailed, "unhide after clean")
}
