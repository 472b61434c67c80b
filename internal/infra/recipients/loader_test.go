package recipients

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestLoadFilesReportsEachFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "hooks.txt")
	require.NoError(t, os.WriteFile(good, []byte("https://one\r\n\nhttps://two\n"), 0o644))
	missing := filepath.Join(dir, "missing.txt")

	results := LoadFiles([]string{missing, good})
	require.Len(t, results, 2)

	assert.Equal(t, missing, results[0].Path)
	assert.Error(t, results[0].Err)
	assert.Empty(t, results[0].URLs)

	assert.NoError(t, results[1].Err)
	assert.Equal(t, []string{"https://one", "https://two"}, results[1].URLs)
}

func TestCollectorOrderAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("https://file-a\nhttps://explicit\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("https://file-b\n"), 0o644))

	c := NewCollector(
		[]string{"https://explicit", "https://second"},
		[]string{b, filepath.Join(dir, "unreadable.txt"), a},
		discardLogger(),
	)

	assert.Equal(t, []string{
		"https://explicit",
		"https://second",
		"https://file-b",
		"https://file-a",
		"https://explicit",
	}, c.Recipients())
}

func TestCollectorRereadsFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hooks.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://one\n"), 0o644))
	c := NewCollector(nil, []string{path}, discardLogger())
	assert.Equal(t, []string{"https://one"}, c.Recipients())

	require.NoError(t, os.WriteFile(path, []byte("https://one\nhttps://two\n"), 0o644))
	assert.Equal(t, []string{"https://one", "https://two"}, c.Recipients())
}

func TestCollectorNoSources(t *testing.T) {
	c := NewCollector(nil, nil, discardLogger())
	assert.Empty(t, c.Recipients())
}
