package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "抓取失败",
		Data:    logrus.Fields{"url": "https://example.com", "index": 2},
	}
	out, err := (&CustomFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2024-03-01 12:30:00] [WARN] [] 抓取失败 index=2 url=https://example.com\n", string(out))
}

func TestInitLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, InitLogger("debug", path))
	t.Cleanup(func() { Log = logrus.New() })

	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	Log.Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO]")
	assert.Contains(t, string(data), "logger_test.go")
	assert.Contains(t, string(data), "hello")
}

func TestInitLogger_BadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, InitLogger("nonsense", ""))
	t.Cleanup(func() { Log = logrus.New() })
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

func TestKratosLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&CustomFormatter{})
	prev := Log
	Log = l
	t.Cleanup(func() { Log = prev })

	h := log.NewHelper(NewKratosLogger())
	h.Errorw(log.DefaultMessageKey, "boom", "path", "/v1/sessions")

	out := buf.String()
	assert.Contains(t, out, "[ERRO]")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "path=/v1/sessions")
}
