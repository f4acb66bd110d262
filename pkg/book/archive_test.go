package book_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/fernspiel/pkg/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipBook(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_OwnsTempDir(t *testing.T) {
	data := zipBook(t, map[string]string{
		"book.yaml": `
name: zipped
sounds:
  beep: {file: sounds/beep.ogg, duration: 1s}
states:
  - id: a
    sounds: [beep]
    end: b
  - id: b
    terminal: true
`,
		"sounds/beep.ogg": "not really audio",
	})

	bk, err := book.FromBytes(data, "")
	require.NoError(t, err)
	assert.Equal(t, "zipped", bk.Name())

	file := bk.Sounds()[0].File
	_, err = os.Stat(file)
	require.NoError(t, err, "sound must be extracted next to the document")

	dir := filepath.Dir(filepath.Dir(file))
	require.NoError(t, bk.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "Close must remove the extracted directory")

	assert.NoError(t, bk.Close(), "Close must be idempotent")
}

func TestExtract_MissingDocument(t *testing.T) {
	data := zipBook(t, map[string]string{"readme.txt": "hi"})

	_, err := book.FromBytes(data, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "book.yaml")
}

func TestExtract_RejectsTraversal(t *testing.T) {
	data := zipBook(t, map[string]string{"../evil.yaml": "x"})

	_, err := book.FromBytes(data, "")
	assert.Error(t, err)
}
