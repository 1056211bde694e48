// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/talkinghead/internal/audiotest"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, os.WriteFile(path, audiotest.ToneWAV(48000, 4800, 300, 0.5), 0o600))

	out, err := run(t, "analyze", "--fps", "20", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "time,viseme_aa,viseme_E,viseme_I,viseme_O,viseme_U,mouthOpen", lines[0])
	// 100ms at 20 fps: two frames plus the closing neutral one
	assert.Len(t, lines, 4)
}

func TestAnalyzeCommand_BadClip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o600))

	_, err := run(t, "analyze", path)
	assert.ErrorContains(t, err, "decode audio")
}

func TestPlayCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	require.NoError(t, os.WriteFile(path, audiotest.ToneWAV(8000, 400, 300, 0.5), 0o600))

	out, err := run(t, "play", "--wav", filepath.Join(dir, "copy.wav"), path)
	require.NoError(t, err)
	assert.Contains(t, out, "mouthOpen=0.000")

	copied, err := os.ReadFile(filepath.Join(dir, "copy.wav"))
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(copied[:4]))
}

func TestAskCommand(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"answer": "Forty two."})
	}))
	defer backend.Close()

	t.Setenv("TALKINGHEAD_BACKEND_URL", backend.URL)

	out, err := run(t, "ask", "--style", "notty", "what", "is", "it?")
	require.NoError(t, err)
	assert.Contains(t, out, "what is it?")
	assert.Contains(t, out, "Forty two.")
}
