// SPDX-License-Identifier: EPL-2.0

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitWriter(t *testing.T) {
	var buf bytes.Buffer

	InitWriter(&buf, "debug", false)
	logger := Component("playback")
	logger.Debug().Str("session", "abc").Msg("started")

	out := buf.String()
	for _, want := range []string{`"component":"playback"`, `"session":"abc"`, `"message":"started"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %s", out, want)
		}
	}

	InitWriter(&buf, "bogus", true)
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("GlobalLevel() = %v, want info", zerolog.GlobalLevel())
	}
}
