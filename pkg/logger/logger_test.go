package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	require.NoError(t, Init(Config{Level: "debug", OutputFile: path}))
	defer Close()

	assert.Equal(t, path, GetCurrentLogFile())
	assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())

	Infof("swipe %s", "right")
	logrus.WithField("module", "deck").Warn("from module logger")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "swipe right")
	assert.Contains(t, string(data), "module=deck")
	assert.NotContains(t, string(data), "\x1b[", "文件中不带颜色")
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init(Config{Level: "verbose"}))
	assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
	assert.Empty(t, GetCurrentLogFile())
}
