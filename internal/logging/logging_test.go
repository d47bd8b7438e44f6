package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("info hides debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Options{Out: &buf, NoColor: true})

		log.Debug().Msg("hidden")
		log.Info().Int64("account_id", 3).Msg("deposit committed")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "deposit committed")
		assert.Contains(t, out, "account_id=3")
	})

	t.Run("verbose shows debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Options{Out: &buf, NoColor: true, Verbose: true})

		log.Debug().Msg("visible")
		assert.Contains(t, buf.String(), "visible")
	})
}
