// Package fetch downloads images into a local directory, optionally
// rendering per-file progress bars.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/agentwire/agentwire/pkg/logger"
	"github.com/agentwire/agentwire/pkg/redirect"
	"github.com/spf13/afero"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultDir     = "./meme_images"
	DefaultWorkers = 4

	fallbackName = "download"
)

// DefaultURLs is the meme set fetched when no URL is given.
var DefaultURLs = []string{
	"https://i.imgflip.com/30b1gx.jpg",
	"https://i.imgflip.com/1g8my4.jpg",
	"https://i.imgflip.com/1ur9b0.jpg",
	"https://i.imgflip.com/9au02y.jpg",
	"https://i.imgflip.com/3oevdk.jpg",
	"https://i.imgflip.com/3lmzyx.jpg",
	"https://i.imgflip.com/22bdq6.jpg",
	"https://i.imgflip.com/261o3j.jpg",
}

// ErrUnsupportedScheme is returned for URLs that are not http or https.
var ErrUnsupportedScheme = errors.New("only http and https URLs can be fetched")

// StatusError reports a response other than 200 OK.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to get '%s' (%d): %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Downloader fetches URLs into Dir. The zero value downloads into
// DefaultDir on the OS filesystem with DefaultWorkers workers.
type Downloader struct {
	Client  *http.Client
	Fs      afero.Fs
	Dir     string
	Workers int
	// Progress, when set, receives mpb progress bars.
	Progress  io.Writer
	UserAgent string
	Log       logger.Logger
}

func (d *Downloader) fs() afero.Fs {
	if d.Fs == nil {
		return afero.NewOsFs()
	}
	return d.Fs
}

func (d *Downloader) dir() string {
	if d.Dir == "" {
		return DefaultDir
	}
	return d.Dir
}

func (d *Downloader) log() logger.Logger {
	if d.Log == nil {
		return logger.NewNopLogger()
	}
	return d.Log
}

func (d *Downloader) client() *http.Client {
	if d.Client == nil {
		return &http.Client{CheckRedirect: redirect.Policy(redirect.DefaultMaxRedirects)}
	}
	if d.Client.CheckRedirect != nil {
		return d.Client
	}
	cp := *d.Client
	cp.CheckRedirect = redirect.Policy(redirect.DefaultMaxRedirects)
	return &cp
}

// Download stores rawURL under filename in the download directory and
// returns the written path. An empty filename is derived from the URL path.
func (d *Downloader) Download(ctx context.Context, rawURL, filename string) (string, error) {
	var p *mpb.Progress
	if d.Progress != nil {
		p = newProgress(ctx, d.Progress)
	}
	dst, err := d.download(ctx, rawURL, filename, p)
	if p != nil {
		p.Wait()
	}
	return dst, err
}

// DownloadAll fetches every URL as meme_<n>.jpg, n starting at 1. The
// first failure cancels the downloads still running and is returned; on
// success the paths are in input order.
func (d *Downloader) DownloadAll(ctx context.Context, urls []string) ([]string, error) {
	var p *mpb.Progress
	if d.Progress != nil {
		p = newProgress(ctx, d.Progress)
	}

	workers := d.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	paths := make([]string, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, u := range urls {
		g.Go(func() error {
			dst, err := d.download(gctx, u, fmt.Sprintf("meme_%d.jpg", i+1), p)
			if err != nil {
				return err
			}
			paths[i] = dst
			return nil
		})
	}
	err := g.Wait()
	if p != nil {
		p.Wait()
	}
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (d *Downloader) download(ctx context.Context, rawURL, filename string, p *mpb.Progress) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%s: %w", u.Redacted(), ErrUnsupportedScheme)
	}
	if filename == "" {
		filename = path.Base(u.Path)
	}
	name := SanitizeFilename(filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	resp, err := d.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: u.Redacted(), Code: resp.StatusCode, Status: resp.Status}
	}

	fs := d.fs()
	dir := d.dir()
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	var body io.Reader = resp.Body
	var bar *mpb.Bar
	if p != nil {
		bar = addBar(p, name, resp.ContentLength)
		body = bar.ProxyReader(resp.Body)
	}

	dst := filepath.Join(dir, name)
	if err := writeAtomic(fs, dir, dst, body); err != nil {
		if bar != nil {
			bar.Abort(false)
		}
		return "", err
	}
	if bar != nil {
		bar.SetTotal(-1, true)
	}
	d.log().Info("downloaded %s to %s", u.Redacted(), dst)
	return dst, nil
}

func writeAtomic(fs afero.Fs, dir, dst string, r io.Reader) error {
	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(dst)+".part-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = fs.Remove(tmpName) }

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", dst, err)
	}
	if err := fs.Rename(tmpName, dst); err != nil {
		cleanup()
		return fmt.Errorf("rename into %s: %w", dst, err)
	}
	return nil
}

// SanitizeFilename reduces name to a single safe path element.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`<>:"|?*`, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" || name == string(os.PathSeparator) {
		return fallbackName
	}
	return name
}

func newProgress(ctx context.Context, w io.Writer) *mpb.Progress {
	return mpb.NewWithContext(ctx, mpb.WithOutput(w), mpb.WithWidth(64))
}

func addBar(p *mpb.Progress, name string, size int64) *mpb.Bar {
	if size < 0 {
		size = 0
	}
	return p.New(size,
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 4}), "done"),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .2f / % .2f"),
		),
	)
}
