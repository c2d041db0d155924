package audit

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Archive keeps a copy of every uploaded import file so a bad import can be
// replayed or inspected later.
type Archive struct {
	Dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{Dir: dir}
}

// SaveImport writes data under a fresh UUID name and returns the file name.
func (a *Archive) SaveImport(provider, originalName string, data []byte) (string, error) {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".dat"
	}
	filename := fmt.Sprintf("%s-%s%s", provider, uuid.New().String(), ext)
	path := filepath.Join(a.Dir, filename)

	log.Printf("Archiving %s import as %s", provider, path)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}
	return filename, nil
}
