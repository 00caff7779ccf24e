// Package audio stores submitted recordings in short-lived local files.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"strings"
	"time"
)

// TempPrefix marks files created by the Downloader; the Sweeper only touches these.
const TempPrefix = "answer-"

var ErrTooLarge = errors.New("audio file is too large")

// TempFile is a downloaded recording. Remove must be called on every path.
type TempFile struct {
	Path string
	Size int64
}

// Remove deletes the file. It is safe to call more than once.
func (f *TempFile) Remove() error {
	if f == nil || f.Path == "" {
		return nil
	}
	err := os.Remove(f.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Downloader fetches recordings into a private temp directory.
type Downloader struct {
	dir     string
	maxSize int64
	client  *http.Client
}

// NewDownloader creates the temp directory if needed.
func NewDownloader(dir string, maxSize int64, timeout time.Duration) (*Downloader, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}

	return &Downloader{
		dir:     dir,
		maxSize: maxSize,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Dir returns the temp directory.
func (d *Downloader) Dir() string { return d.dir }

// MaxSize returns the largest accepted file in bytes; 0 means unlimited.
func (d *Downloader) MaxSize() int64 { return d.maxSize }

// Download stores the body of url in a new temp file with extension ext.
// On error no file is left behind.
func (d *Downloader) Download(ctx context.Context, url, ext string) (*TempFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", stripURL(err))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download audio: %w", stripURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download audio: status %d", resp.StatusCode)
	}
	if d.maxSize > 0 && resp.ContentLength > d.maxSize {
		return nil, ErrTooLarge
	}

	out, err := os.CreateTemp(d.dir, TempPrefix+"*"+sanitizeExt(ext))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmp := &TempFile{Path: out.Name()}

	body := io.Reader(resp.Body)
	if d.maxSize > 0 {
		// One extra byte tells an exact-size file apart from an oversized one.
		body = io.LimitReader(resp.Body, d.maxSize+1)
	}

	written, err := io.Copy(out, body)
	closeErr := out.Close()

	switch {
	case err != nil:
		_ = tmp.Remove()
		return nil, fmt.Errorf("save audio: %w", err)
	case closeErr != nil:
		_ = tmp.Remove()
		return nil, fmt.Errorf("close audio: %w", closeErr)
	case d.maxSize > 0 && written > d.maxSize:
		_ = tmp.Remove()
		return nil, ErrTooLarge
	}

	tmp.Size = written
	return tmp, nil
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}

// stripURL drops the request URL from err. Telegram file links carry the
// bot token in their path.
func stripURL(err error) error {
	var uerr *neturl.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
