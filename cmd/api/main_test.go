package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"marketplace/internal/logger"
)

// syncBuffer records writes and whether they were flushed afterwards.
type syncBuffer struct {
	bytes.Buffer
	syncedAt int
}

func (b *syncBuffer) Sync() error {
	b.syncedAt = b.Len()
	return nil
}

func captureLogger(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{syncedAt: -1}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), buf, zapcore.InfoLevel)
	t.Cleanup(logger.Set(zap.New(core)))
	return buf
}

func TestExitCode(t *testing.T) {
	t.Run("run error is logged and flushed", func(t *testing.T) {
		buf := captureLogger(t)

		code := exitCode(errors.New("failed to connect to database: refused"))

		assert.Equal(t, 1, code)
		assert.Contains(t, buf.String(), `"level":"error"`)
		assert.Contains(t, buf.String(), `"msg":"fatal error"`)
		assert.Contains(t, buf.String(), "failed to connect to database: refused")
		assert.Equal(t, buf.Len(), buf.syncedAt, "logger must be synced after the error is written")
	})

	t.Run("clean shutdown", func(t *testing.T) {
		buf := captureLogger(t)

		assert.Equal(t, 0, exitCode(nil))
		assert.Zero(t, buf.Len())
		assert.Equal(t, 0, buf.syncedAt)
	})
}
