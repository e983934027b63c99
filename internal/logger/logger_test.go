package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type opts struct{ level, output, file string }

func (o opts) GetLevel() string  { return o.level }
func (o opts) GetOutput() string { return o.output }
func (o opts) GetFile() string   { return o.file }

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(WARN, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Info("plan %s created", "0x01")
	assert.Zero(t, buf.Len())

	l.Warn("plan %s expired", "0x01")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "plan 0x01 expired", entry["message"])
	assert.Contains(t, entry, "timestamp")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLogLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLogLevel("warning"))
	assert.Equal(t, ERROR, ParseLogLevel("error"))
	assert.Equal(t, INFO, ParseLogLevel("verbose"))
}

func TestInitFileOutput(t *testing.T) {
	prev := defaultLogger
	t.Cleanup(func() { SetDefaultLogger(prev) })

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init(opts{level: "info", output: "file", file: path}))
	Info("reward paid to client %d", 7)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reward paid to client 7")

	assert.Error(t, Init(opts{output: "syslog"}))
	assert.Error(t, Init(opts{output: "file"}))
}
