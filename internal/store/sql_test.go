package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSQL(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO t (id, a, b) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET a = EXCLUDED.a, b = EXCLUDED.b",
		InsertSQL("t", []string{"id", "a", "b"}, "id", Dollar))
	assert.Equal(t, "INSERT INTO t (a, b) VALUES (?, ?)", InsertSQL("t", []string{"a", "b"}, "", Question))
}

func TestTimeScan(t *testing.T) {
	want := time.Date(2026, 3, 2, 14, 5, 6, 700000000, time.UTC)
	for _, src := range []any{
		want,
		want.In(time.FixedZone("BRT", -3*3600)),
		"2026-03-02 14:05:06.7+00:00",
		"2026-03-02T11:05:06.7-03:00",
		[]byte("2026-03-02 14:05:06.7 +0000 UTC"),
	} {
		var tm Time
		require.NoError(t, tm.Scan(src), "%v", src)
		assert.True(t, tm.Valid)
		assert.True(t, want.Equal(tm.T), "%v -> %v", src, tm.T)
	}

	var tm Time
	require.NoError(t, tm.Scan(nil))
	assert.Nil(t, tm.Ptr())
	assert.Error(t, tm.Scan("ontem"))
	assert.Error(t, tm.Scan(42))
}
