package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUp_Embedded(t *testing.T) {
	ups, err := Up()
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	assert.Equal(t, 1, ups[0].Version)
	assert.Equal(t, "initial", ups[0].Name)
	assert.Contains(t, ups[0].SQL, "CREATE TABLE IF NOT EXISTS doc_metadata")
	assert.Equal(t, ups[len(ups)-1].Version, Latest())
}

func TestLoad_OrdersByVersionAndSkipsDown(t *testing.T) {
	fsys := fstest.MapFS{
		"010_sessions.up.sql":   {Data: []byte("B")},
		"002_urls.up.sql":       {Data: []byte("A")},
		"002_urls.down.sql":     {Data: []byte("drop")},
		"README.md":             {Data: []byte("notes")},
		"010_sessions.down.sql": {Data: []byte("drop")},
	}

	ups, err := load(fsys)
	require.NoError(t, err)
	require.Len(t, ups, 2)
	assert.Equal(t, Migration{Version: 2, Name: "urls", SQL: "A"}, ups[0])
	assert.Equal(t, Migration{Version: 10, Name: "sessions", SQL: "B"}, ups[1])
}

func TestLoad_RejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"no version", fstest.MapFS{"initial.up.sql": {Data: []byte("x")}}},
		{"zero version", fstest.MapFS{"000_initial.up.sql": {Data: []byte("x")}}},
		{"duplicate", fstest.MapFS{
			"001_a.up.sql": {Data: []byte("x")},
			"001_b.up.sql": {Data: []byte("y")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.fsys)
			assert.Error(t, err)
		})
	}
}
