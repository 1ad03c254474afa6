// file: internal/fetch/fetch.go
// version: 1.0.0
// guid: fd5f5b51-5234-4431-b30b-a9803aaf922a

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jdfalk/readora/internal/models"
	"github.com/schollz/progressbar/v3"
)

// ErrNoDownload is returned for books without a download URL.
var ErrNoDownload = errors.New("book has no download link")

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Fetcher writes a book's file into a directory.
type Fetcher struct {
	httpClient *http.Client
	dir        string
	progress   io.Writer
}

// New creates a Fetcher writing into dir. progress receives the progress
// bar; nil disables it.
func New(dir string, progress io.Writer) *Fetcher {
	return &Fetcher{httpClient: &http.Client{}, dir: dir, progress: progress}
}

// FileName returns the file name used for book.
func FileName(book models.Book) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(book.Title, "-"), "-.")
	if len(name) > 80 {
		name = name[:80]
	}
	id := unsafeChars.ReplaceAllString(book.ID, "-")
	if name == "" {
		return id + ".pdf"
	}
	return id + "-" + name + ".pdf"
}

// Fetch downloads book.Download and returns the written path. The file
// only appears under its final name once fully written.
func (f *Fetcher) Fetch(ctx context.Context, book models.Book) (string, error) {
	if !book.HasDownload() {
		return "", fmt.Errorf("%w: %s", ErrNoDownload, book.ID)
	}
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, book.Download, nil)
	if err != nil {
		return "", fmt.Errorf("invalid download url: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", book.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s returned status %d", book.ID, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(f.dir, ".readora-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	if f.progress != nil {
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetWriter(f.progress),
			progressbar.OptionSetDescription(book.DisplayTitle()),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
		w = io.MultiWriter(tmp, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", book.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	dest := filepath.Join(f.dir, FileName(book))
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}
	log.Printf("[INFO] fetched %s to %s", book.ID, dest)
	return dest, nil
}
