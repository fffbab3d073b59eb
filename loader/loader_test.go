package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/vecload/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newLoader(t *testing.T, opts ...Option) *Loader {
	t.Helper()
	l, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(l.Release)
	return l
}

func TestLoad_SingleJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "events.json", `[{"id":1},{"id":2}]`)

	docs, err := newLoader(t).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, `[{"id":1},{"id":2}]`, string(doc.Content))
	assert.Equal(t, core.DocumentID(path, doc.Content), doc.Id)
	assert.Equal(t, "events.json", doc.Metadata[MetaFileName])
	assert.Equal(t, path, doc.Metadata[MetaFilePath])
	assert.Equal(t, "19", doc.Metadata[MetaFileSize])
	assert.Contains(t, doc.Metadata[MetaFileType], "json")
	assert.NotEmpty(t, doc.Metadata[MetaLastModified])
	assert.False(t, doc.LoadedAt.IsZero())
}

func TestLoad_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("doc-%02d.json", i), fmt.Sprintf(`{"n":%d}`, i)))
	}

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			docs, err := newLoader(t, WithWorkers(workers)).Load(context.Background(), paths...)
			require.NoError(t, err)
			require.Len(t, docs, len(paths))
			for i, doc := range docs {
				assert.Equal(t, paths[i], doc.Path)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "ok.json", `{"a":1}`)
	invalid := writeFile(t, dir, "broken.json", `{"a":`)
	binary := writeFile(t, dir, "blob.txt", "\xff\xfe\xfd")

	tests := []struct {
		name  string
		paths []string
		kind  error
	}{
		{"no paths", nil, core.ErrConfig},
		{"missing file", []string{filepath.Join(dir, "missing.json")}, core.ErrNotFound},
		{"missing after valid", []string{valid, filepath.Join(dir, "missing.json")}, core.ErrNotFound},
		{"invalid json", []string{invalid}, core.ErrParse},
		{"invalid utf8", []string{binary}, core.ErrParse},
		{"directory", []string{dir}, core.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := newLoader(t).Load(context.Background(), tt.paths...)
			require.Error(t, err)
			assert.Nil(t, docs)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestLoad_EarliestErrorWins(t *testing.T) {
	dir := t.TempDir()
	invalid := writeFile(t, dir, "broken.json", `nope`)
	missing := filepath.Join(dir, "missing.json")

	_, err := newLoader(t, WithWorkers(2)).Load(context.Background(), invalid, missing)
	assert.ErrorIs(t, err, core.ErrParse)
}

func TestLoad_Formats(t *testing.T) {
	dir := t.TempDir()
	notJSON := writeFile(t, dir, "notes.txt", "plain words")

	_, err := newLoader(t).Load(context.Background(), notJSON)
	require.NoError(t, err, "auto treats .txt as text")

	_, err = newLoader(t, WithFormat(FormatJSON)).Load(context.Background(), notJSON)
	assert.ErrorIs(t, err, core.ErrParse)

	jsonAsText := writeFile(t, dir, "data.json", `{not json}`)
	_, err = newLoader(t, WithFormat(FormatText)).Load(context.Background(), jsonAsText)
	assert.NoError(t, err)

	latin1 := writeFile(t, dir, "latin1.json", "[{\"name\": \"caf\xe9\"}]")
	_, err = newLoader(t, WithFormat(FormatJSON)).Load(context.Background(), latin1)
	assert.ErrorIs(t, err, core.ErrParse)
	_, err = newLoader(t).Load(context.Background(), latin1)
	assert.ErrorIs(t, err, core.ErrParse, "auto treats .json as JSON")
}

func TestLoad_RepeatedPath(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `[{"a": 1}]`)
	b := writeFile(t, dir, "b.json", `[{"b": 1}]`)

	tests := []struct {
		name  string
		paths []string
	}{
		{"same path twice", []string{a, b, a}},
		{"same file spelled differently", []string{a, dir + "/./a.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := newLoader(t).Load(context.Background(), tt.paths...)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrConfig)
			assert.Nil(t, docs)
		})
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.json", `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader(t).Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_Progress(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{}`)
	b := writeFile(t, dir, "b.json", `[]`)

	var buf bytes.Buffer
	_, err := newLoader(t, WithProgress(&buf)).Load(context.Background(), a, b)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Loading: 2/2")
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(WithWorkers(0))
	assert.ErrorIs(t, err, core.ErrConfig)

	_, err = New(WithFormat("xml"))
	assert.ErrorIs(t, err, core.ErrConfig)
}
