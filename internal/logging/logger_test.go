package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogging(t *testing.T) {
	t.Cleanup(func() {
		CloseDefaultLogger()
		configMu.Lock()
		activeConfig = nil
		configMu.Unlock()
		_ = manager.rebind(nil)
	})
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerDisabledWithoutConfig(t *testing.T) {
	resetLogging(t)
	l, err := NewLogger("world")
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		l.Info("ничего не пишется")
		Info("глобальный логгер не инициализирован")
	})

	var nilLogger *Logger
	assert.NotPanics(t, func() { nilLogger.Error("nil logger") })
}

func TestFileLoggerRespectsLevel(t *testing.T) {
	resetLogging(t)
	dir := t.TempDir()
	require.NoError(t, Configure(Config{Dir: dir, ConsoleLevel: ERROR, FileLevel: WARN}))

	l := GetComponentLogger("storage")
	l.Info("пропускается")
	l.Warn("чанк %d,%d повреждён", 1, 2)
	require.NoError(t, GetLoggerManager().CloseAll())

	files, err := filepath.Glob(filepath.Join(dir, "storage_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, "[WARN] [storage] чанк 1,2 повреждён"))
	assert.False(t, strings.Contains(text, "пропускается"))
}

func TestHexDumpLimit(t *testing.T) {
	assert.Equal(t, "No data", HexDump(nil))
	dump := HexDump(make([]byte, 300))
	assert.Equal(t, 4, strings.Count(dump, "\n"), "Дамп ограничен 64 байтами")
}

func TestManagerSetLogLevel(t *testing.T) {
	resetLogging(t)
	require.NoError(t, Configure(Config{ConsoleLevel: INFO, FileLevel: ERROR}))

	lm := GetLoggerManager()
	l := GetStorageLogger()
	require.NotNil(t, l)
	assert.Contains(t, lm.Components(), "storage")

	require.NoError(t, lm.SetLogLevel("storage", DEBUG, DEBUG))
	assert.Equal(t, DEBUG, l.minConsoleLevel)
	assert.Error(t, lm.SetLogLevel("nobody", DEBUG, DEBUG))
}

func TestConfigureRebindsCapturedLoggers(t *testing.T) {
	resetLogging(t)
	l := GetPathfindLogger()
	l.Warn("до настройки ничего не пишется")

	first, second := t.TempDir(), t.TempDir()
	require.NoError(t, Configure(Config{Dir: first, ConsoleLevel: ERROR, FileLevel: INFO}))
	l.Info("первый каталог")
	require.NoError(t, Configure(Config{Dir: second, ConsoleLevel: ERROR, FileLevel: INFO}))
	assert.Same(t, l, GetPathfindLogger(), "Логгер компонента сохраняет идентичность")
	l.Info("второй каталог")
	require.NoError(t, GetLoggerManager().CloseAll())

	read := func(dir string) string {
		files, err := filepath.Glob(filepath.Join(dir, ComponentPathfind+"_*.log"))
		require.NoError(t, err)
		require.Len(t, files, 1)
		data, err := os.ReadFile(files[0])
		require.NoError(t, err)
		return string(data)
	}
	assert.Contains(t, read(first), "первый каталог")
	assert.NotContains(t, read(first), "второй каталог")
	assert.Contains(t, read(second), "второй каталог")
}
