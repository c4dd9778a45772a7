package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithFile_WritesJSONRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")

	InitWithFile("giveaway-bot-test", true, FileOptions{Path: path, MaxSizeMB: 1})
	Info().Str("giveaway_id", "42").Msg("settled")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"giveaway-bot-test"`)
	assert.Contains(t, string(data), `"giveaway_id":"42"`)
	assert.Contains(t, string(data), `"message":"settled"`)

	Init("giveaway-bot-test", false)
}
