package dataset

import (
	"archive/zip"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// extractedDir is the cache subdirectory holding the unpacked archive.
const extractedDir = "dataset"

// ArchiveDownloader fetches a zipped dataset over HTTP and unpacks it into
// a cache directory. A cache that already holds a valid layout is reused.
type ArchiveDownloader struct {
	url        string
	cacheDir   string
	username   string
	key        string
	httpClient *http.Client
}

// Options holds configuration for creating a new ArchiveDownloader
type Options struct {
	URL      string
	CacheDir string
	// Username and Key are sent as HTTP basic auth when both are set.
	Username string
	Key      string
	Timeout  time.Duration
}

// NewArchiveDownloader creates a downloader with a pooled HTTP transport
func NewArchiveDownloader(opts Options) *ArchiveDownloader {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &ArchiveDownloader{
		url:      opts.URL,
		cacheDir: opts.CacheDir,
		username: opts.Username,
		key:      opts.Key,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
	}
}

// Dir is where the archive is extracted.
func (d *ArchiveDownloader) Dir() string {
	return filepath.Join(d.cacheDir, extractedDir)
}

// Acquire downloads and extracts the archive unless the cache already holds it.
func (d *ArchiveDownloader) Acquire(ctx context.Context) (string, error) {
	dest := d.Dir()
	if _, err := ResolveLayout(dest); err == nil {
		logrus.Infof("Using cached dataset in %s", dest)
		return dest, nil
	}

	if err := os.MkdirAll(d.cacheDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create cache directory")
	}

	archive, err := d.download(ctx)
	if err != nil {
		return "", err
	}
	defer os.Remove(archive)

	tmp, err := os.MkdirTemp(d.cacheDir, "extract-")
	if err != nil {
		return "", errors.Wrap(err, "create extraction directory")
	}
	if err := extract(archive, tmp); err != nil {
		os.RemoveAll(tmp)
		return "", err
	}

	if err := os.RemoveAll(dest); err != nil {
		os.RemoveAll(tmp)
		return "", errors.Wrap(err, "clear stale dataset cache")
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.RemoveAll(tmp)
		return "", errors.Wrap(err, "move extracted dataset")
	}

	logrus.Infof("Dataset extracted to %s", dest)
	return dest, nil
}

func (d *ArchiveDownloader) download(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return "", errors.Wrap(err, "build dataset request")
	}
	if d.username != "" && d.key != "" {
		req.SetBasicAuth(d.username, d.key)
	}

	logrus.Infof("Downloading dataset from %s", d.url)
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "download dataset")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", errors.Errorf("dataset download failed with status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp(d.cacheDir, "archive-*.zip")
	if err != nil {
		return "", errors.Wrap(err, "create archive file")
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(err, "write archive")
	}

	logrus.Debugf("Downloaded %d bytes to %s", n, f.Name())
	return f.Name(), nil
}

func extract(archive, dir string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return errors.Wrap(err, "open archive")
	}
	defer zr.Close()

	root := filepath.Clean(dir) + string(os.PathSeparator)
	for _, f := range zr.File {
		target := filepath.Join(dir, f.Name)
		if !strings.HasPrefix(target, root) {
			return errors.Errorf("archive entry %q escapes extraction directory", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "create %s", target)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(target))
	}
	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, "open archive entry %s", f.Name)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create %s", target)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return errors.Wrapf(err, "extract %s", f.Name)
	}
	return errors.Wrapf(out.Close(), "close %s", target)
}
