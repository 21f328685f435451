package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSource_ReadBatch_Formats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		urls    []string
	}{
		{
			name:    "json array",
			file:    "batch.json",
			content: `[{"url":"https://a","content_hash":"h1"},{"url":"https://b","content_hash":"h2"}]`,
			urls:    []string{"https://a", "https://b"},
		},
		{
			name:    "documents envelope",
			file:    "envelope.json",
			content: `{"documents":[{"url":"https://c","content_hash":"h3"}]}`,
			urls:    []string{"https://c"},
		},
		{
			name:    "json lines with blanks",
			file:    "batch.jsonl",
			content: "{\"url\":\"https://d\"}\n\n{\"url\":\"https://e\"}\n",
			urls:    []string{"https://d", "https://e"},
		},
		{
			name:    "ndjson",
			file:    "batch.ndjson",
			content: `{"url":"https://f"}`,
			urls:    []string{"https://f"},
		},
		{
			name:    "empty file",
			file:    "empty.json",
			content: "  \n",
			urls:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)

			docs, err := New().ReadBatch(context.Background(), path)
			require.NoError(t, err)

			var urls []string
			for _, d := range docs {
				urls = append(urls, d.URL)
			}
			assert.Equal(t, tt.urls, urls)
		})
	}
}

func TestSource_ReadBatch_DecodesCrawlerFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "batch.json", `[{
		"url": "https://thuvienphapluat.vn/van-ban/a.aspx",
		"content_hash": "abc",
		"ngay_cap_nhat": "15/03/2024",
		"so_hieu": "12/2024/NĐ-CP",
		"loai_van_ban": "Nghị định",
		"tinh_trang": "Còn hiệu lực",
		"raw_data": {"title": "x"},
		"error": ""
	}]`)

	docs, err := New().ReadBatch(context.Background(), "file://"+path)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	require.NotNil(t, doc.UpdatedAt)
	assert.Equal(t, "15/03/2024", *doc.UpdatedAt)
	assert.Equal(t, "12/2024/NĐ-CP", doc.DocumentNumber)
	assert.Equal(t, "Nghị định", doc.Category)
	assert.JSONEq(t, `{"title":"x"}`, string(doc.RawData))
	assert.False(t, doc.Failed())
}

func TestSource_ReadBatch_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New().ReadBatch(context.Background(), writeFile(t, dir, "batch.csv", "url\n"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = New().ReadBatch(context.Background(), filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = New().ReadBatch(context.Background(), writeFile(t, dir, "bad.json", `[{"url":`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().ReadBatch(context.Background(), writeFile(t, dir, "bad.jsonl", "{\"url\":\"a\"}\nnope\n"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "line 2")
}

func TestSource_ReadBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ReadBatch(ctx, "whatever.json")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSource_Watch_EmitsSettledBatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := New(WithSettle(20*time.Millisecond)).Watch(ctx, dir)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, ".partial.json"), []byte("[]"), 0644)
		_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
		_ = os.WriteFile(filepath.Join(dir, "batch-001.json"), []byte("[]"), 0644)
	}()

	select {
	case path := <-paths:
		assert.Equal(t, "batch-001.json", filepath.Base(path))
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for batch file")
	}
}

func TestSource_Watch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	paths, errs, err := New().Watch(ctx, t.TempDir())
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-paths:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("paths channel not closed")
	}
	_, ok := <-errs
	assert.False(t, ok)
}

func TestSource_Watch_MissingDir(t *testing.T) {
	_, _, err := New().Watch(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestBatchEvent(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "batch.json", "[]")
	hidden := writeFile(t, dir, ".batch.json", "[]")
	other := writeFile(t, dir, "readme.md", "x")
	sub := filepath.Join(dir, "sub.json")
	require.NoError(t, os.Mkdir(sub, 0755))

	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"create", file, fsnotify.Create, true},
		{"write", file, fsnotify.Write, true},
		{"remove", file, fsnotify.Remove, false},
		{"chmod", file, fsnotify.Chmod, false},
		{"hidden", hidden, fsnotify.Create, false},
		{"not a batch", other, fsnotify.Create, false},
		{"directory", sub, fsnotify.Create, false},
		{"vanished", filepath.Join(dir, "gone.json"), fsnotify.Create, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := batchEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{"file.json", false},
		{"path/to/file.json", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestIsBatchFile(t *testing.T) {
	assert.True(t, IsBatchFile("a.json"))
	assert.True(t, IsBatchFile("a.JSONL"))
	assert.True(t, IsBatchFile("a.ndjson"))
	assert.False(t, IsBatchFile("a.csv"))
	assert.False(t, IsBatchFile("json"))
}
