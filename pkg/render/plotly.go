package render

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultPlotlyURL is the plotly.js build inlined into documents.
const DefaultPlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// assetsDir is the cache subdirectory holding downloaded scripts.
const assetsDir = "assets"

// ScriptSource locates the plotly.js bundle. A local File wins; otherwise the
// bundle at URL is downloaded once and kept under CacheDir.
type ScriptSource struct {
	URL      string
	File     string
	CacheDir string
	Timeout  time.Duration
}

// CachePath is where the downloaded bundle is kept.
func (s ScriptSource) CachePath() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", errors.Wrapf(err, "parse plotly url %q", s.URL)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", errors.Errorf("plotly url %q has no file name", s.URL)
	}
	return filepath.Join(s.CacheDir, assetsDir, name), nil
}

// Load returns the bundle contents.
func (s ScriptSource) Load(ctx context.Context) ([]byte, error) {
	if s.File != "" {
		script, err := os.ReadFile(s.File)
		if err != nil {
			return nil, errors.Wrap(err, "read plotly.js")
		}
		return script, nil
	}

	cached, err := s.CachePath()
	if err != nil {
		return nil, err
	}
	if script, err := os.ReadFile(cached); err == nil && len(script) > 0 {
		logrus.Debugf("Using cached plotly.js at %s", cached)
		return script, nil
	}

	script, err := s.download(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cached), 0o755); err != nil {
		return nil, errors.Wrap(err, "create assets cache")
	}
	if err := writeAtomic(cached, script); err != nil {
		return nil, err
	}
	return script, nil
}

func (s ScriptSource) download(ctx context.Context) ([]byte, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create plotly.js request")
	}

	logrus.Infof("Downloading plotly.js from %s", s.URL)
	resp, err := (&http.Client{Timeout: timeout}).Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download plotly.js")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, errors.Errorf("plotly.js download returned status %d", resp.StatusCode)
	}
	script, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read plotly.js")
	}
	if len(script) == 0 {
		return nil, errors.New("plotly.js download was empty")
	}
	return script, nil
}
