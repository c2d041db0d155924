package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "imports")
	archive := NewArchive(dir)

	t.Run("SaveImport creates directory and writes file", func(t *testing.T) {
		filename, err := archive.SaveImport("pocket", "ril_export.html", []byte("<ul></ul>"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filename, "pocket-"))
		assert.True(t, strings.HasSuffix(filename, ".html"))

		content, err := os.ReadFile(filepath.Join(dir, filename))
		require.NoError(t, err)
		assert.Equal(t, "<ul></ul>", string(content))
	})

	t.Run("SaveImport generates unique filenames", func(t *testing.T) {
		first, err := archive.SaveImport("poche", "export.json", []byte("[]"))
		require.NoError(t, err)
		second, err := archive.SaveImport("poche", "export.json", []byte("[]"))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("SaveImport falls back to a generic extension", func(t *testing.T) {
		filename, err := archive.SaveImport("readability", "", []byte("{}"))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(filename, ".dat"))
	})
}
