// Package pictures downloads the images referenced by an entry body into a
// per-entry directory and rewrites the body to point at the local copies.
package pictures

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxPictureSize = 10 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// Store keeps pictures under <mediaDir>/<entryID>/ and serves them from
// <publicPrefix>/<entryID>/.
type Store struct {
	mediaDir     string
	publicPrefix string
	httpClient   *http.Client
}

// NewStore creates the media directory if needed.
func NewStore(mediaDir, publicPrefix string) (*Store, error) {
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	return &Store{
		mediaDir:     mediaDir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Localize downloads every <img> of body relative to pageURL and returns the
// rewritten body. Images that cannot be fetched keep their original source.
// The body is returned untouched when it has no images.
func (s *Store) Localize(ctx context.Context, entryID uint, pageURL, body string) (string, error) {
	if !strings.Contains(body, "<img") {
		return body, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body, fmt.Errorf("parse body: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return body, fmt.Errorf("parse page url: %w", err)
	}

	images := doc.Find("img[src]")
	if images.Length() == 0 {
		return body, nil
	}

	dir := s.EntryDir(entryID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return body, fmt.Errorf("create entry dir: %w", err)
	}

	images.Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		ref, err := url.Parse(strings.TrimSpace(src))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}

		filename := pictureFilename(abs)
		target := filepath.Join(dir, filename)
		if _, err := os.Stat(target); err != nil {
			if err := s.download(ctx, abs.String(), dir, target); err != nil {
				log.Printf("Failed to download picture %s for entry %d: %v", abs, entryID, err)
				return
			}
		}
		img.SetAttr("src", s.publicPrefix+"/"+strconv.FormatUint(uint64(entryID), 10)+"/"+filename)
	})

	html, err := doc.Find("body").Html()
	if err != nil {
		return body, err
	}
	return html, nil
}

// RemoveEntry deletes the picture directory of an entry. A missing directory
// is not an error.
func (s *Store) RemoveEntry(entryID uint) error {
	return os.RemoveAll(s.EntryDir(entryID))
}

// EntryDir is the directory holding the pictures of one entry.
func (s *Store) EntryDir(entryID uint) string {
	return filepath.Join(s.mediaDir, strconv.FormatUint(uint64(entryID), 10))
}

// MediaDir returns the root directory, used to mount static serving.
func (s *Store) MediaDir() string {
	return s.mediaDir
}

// pictureFilename derives a stable name from the picture URL.
func pictureFilename(u *url.URL) string {
	hash := sha256.Sum256([]byte(u.String()))
	ext := strings.ToLower(path.Ext(u.Path))
	if !allowedExtensions[ext] {
		ext = ".jpg"
	}
	return fmt.Sprintf("%x%s", hash[:8], ext)
}

func (s *Store) download(ctx context.Context, src, dir, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "readlater")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("unexpected content type %q", ct)
	}

	// Temp file in the same directory so the rename is atomic.
	tmpFile, err := os.CreateTemp(dir, "picture_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	written, err := io.Copy(tmpFile, io.LimitReader(resp.Body, maxPictureSize+1))
	if err != nil {
		return err
	}
	if written > maxPictureSize {
		return fmt.Errorf("picture larger than %d bytes", maxPictureSize)
	}
	tmpFile.Close()

	return os.Rename(tmpPath, target)
}
