package setup

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	getter "github.com/hashicorp/go-getter"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
)

// Installer downloads and unpacks a data package release from Zenodo.
type Installer struct {
	logger *zap.SugaredLogger

	// ShowProgress renders a terminal progress bar during download.
	ShowProgress bool
}

// NewInstaller builds an installer.
func NewInstaller(logger *zap.SugaredLogger) *Installer {
	return &Installer{logger: logger, ShowProgress: true}
}

// Install fetches the release published under doi and unpacks it into
// dataDir. An existing installation is refused unless force is set; forcing
// removes the old data directory first. The unpacked manifest is read back
// and version-checked before Install reports success.
func (i *Installer) Install(ctx context.Context, doi, dataDir string, force bool) (*Manifest, error) {
	record, err := hq.Record(doi)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(dataDir); err == nil {
		if !force {
			return nil, errors.WithHint(
				errors.Newf("data directory %s already exists", dataDir),
				"pass --force to replace the existing data package")
		}
		i.logger.Infow("Removing existing data directory", "dir", dataDir)
		if err := os.RemoveAll(dataDir); err != nil {
			return nil, errors.Wrapf(err, "remove %s", dataDir)
		}
	}
	if err := os.MkdirAll(dataDir, hq.DefaultDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "create %s", dataDir)
	}

	url := fmt.Sprintf("%s/%s/files/%s?archive=tar.gz",
		hq.ZenodoRecordsURL, doi, record.Filename)
	i.logger.Infow("Downloading data package",
		"doi", doi,
		"version", record.Version,
		"url", url,
	)

	client := &getter.Client{
		Ctx:     ctx,
		Src:     url,
		Dst:     dataDir,
		Mode:    getter.ClientModeDir,
		Options: i.clientOptions(),
	}
	if err := client.Get(); err != nil {
		// Leave no half-unpacked installation behind.
		os.RemoveAll(dataDir)
		return nil, errors.Wrapf(err, "download %s", url)
	}

	manifest, err := ReadManifest(dataDir)
	if err != nil {
		os.RemoveAll(dataDir)
		return nil, err
	}

	i.logger.Infow("Data package installed",
		"dir", dataDir,
		"version", manifest.Version,
	)
	return manifest, nil
}

func (i *Installer) clientOptions() []getter.ClientOption {
	if !i.ShowProgress {
		return nil
	}
	return []getter.ClientOption{getter.WithProgress(newProgressTracker())}
}

// Delete removes the installed data package.
func Delete(dataDir string, logger *zap.SugaredLogger) error {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		logger.Infow("No data package installed", "dir", dataDir)
		return nil
	}
	if err := os.RemoveAll(dataDir); err != nil {
		return errors.Wrapf(err, "remove %s", dataDir)
	}
	logger.Infow("Data package removed", "dir", dataDir)
	return nil
}

// progressTracker renders download progress with a terminal bar. Updates
// are rate-limited so large downloads do not spend their time redrawing.
type progressTracker struct {
	limiter *rate.Limiter
}

func newProgressTracker() *progressTracker {
	return &progressTracker{limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1)}
}

// TrackProgress implements getter.ProgressTracker.
func (t *progressTracker) TrackProgress(src string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	if totalSize <= 0 {
		// Unknown size, no bar to draw.
		return stream
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(int(totalSize)).
		WithCurrent(int(currentSize)).
		WithTitle("Downloading").
		WithShowCount(false).
		Start()
	if err != nil {
		return stream
	}
	return &progressReader{ReadCloser: stream, tracker: t, bar: bar}
}

type progressReader struct {
	io.ReadCloser
	tracker *progressTracker
	bar     *pterm.ProgressbarPrinter
	pending int
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.pending += n
	if r.tracker.limiter.Allow() || err == io.EOF {
		r.bar.Add(r.pending)
		r.pending = 0
	}
	return n, err
}

func (r *progressReader) Close() error {
	if r.pending > 0 {
		r.bar.Add(r.pending)
	}
	r.bar.Stop()
	return r.ReadCloser.Close()
}
