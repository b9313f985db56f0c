package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("dev logs debug", func(t *testing.T) {
		t.Parallel()
		log, err := New(EnvDev)
		require.NoError(t, err)
		assert.True(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("production starts at info", func(t *testing.T) {
		t.Parallel()
		log, err := New("prod")
		require.NoError(t, err)
		assert.False(t, log.Desugar().Core().Enabled(zapcore.DebugLevel))
		assert.True(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
	})
}

func TestNop(t *testing.T) {
	t.Parallel()

	var log Logger = Nop()
	log.Infow("ignored", "k", "v")
	assert.NoError(t, log.Sync())
}
