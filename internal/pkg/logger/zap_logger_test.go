package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogsNewestFirstAndFiltered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := NewFileLogger(path)

	l.Info("BOOKING", "meal booked", map[string]interface{}{"meal_id": "m-1"})
	l.Error("PAYMENT", "refund failed", map[string]interface{}{"error": "declined"})
	l.Info("BOOKING", "meal cancelled", nil)
	_ = l.Sync()

	all, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "meal cancelled", all[0].Message)
	assert.Equal(t, "BOOKING", all[0].Module)

	errorsOnly, err := l.GetLogs("ERROR", 10, 0)
	require.NoError(t, err)
	require.Len(t, errorsOnly, 1)
	assert.Equal(t, "refund failed", errorsOnly[0].Message)

	found, err := l.GetLogById(errorsOnly[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "PAYMENT", found.Module)

	page, err := l.GetLogs("", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "refund failed", page[0].Message)

	page, err = l.GetLogs("", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestNopLoggerHasNoEntries(t *testing.T) {
	l := NewNopLogger()
	l.Info("TEST", "ignored", nil)

	logs, err := l.GetLogs("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)

	entry, err := l.GetLogById("missing")
	assert.NoError(t, err)
	assert.Nil(t, entry)
}
