// Package job is the work a store-worker process does: downloading, verifying and
// unpacking an app, or removing it again. Progress goes through a progress.Emitter.
package job

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/progress"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRetries        = 3
	defaultReportInterval = 250 * time.Millisecond
)

type Runner struct {
	installRoot    string
	emitter        *progress.Emitter
	client         *retryablehttp.Client
	reportInterval time.Duration
}

type RunnerOption func(*Runner)

func WithHTTPClient(client *retryablehttp.Client) RunnerOption {
	return func(r *Runner) {
		r.client = client
	}
}

func WithReportInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.reportInterval = d
	}
}

func NewRunner(installRoot string, emitter *progress.Emitter, opts ...RunnerOption) *Runner {
	r := &Runner{
		installRoot:    installRoot,
		emitter:        emitter,
		client:         newHTTPClient(defaultRetries),
		reportInterval: defaultReportInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AppDir is where appID is installed. appID must already have passed
// library.ValidateAppID.
func (r *Runner) AppDir(appID string) string {
	return filepath.Join(r.installRoot, appID)
}

func (r *Runner) status(text string) {
	if err := r.emitter.EmitLine(text); err != nil {
		log.Warn().Err(err).Msg("Error writing progress")
	}
}

// InstallBinary downloads a zip archive, checks it against a base64 SHA-256 hash and
// unpacks it as the app's install directory, replacing any previous install.
func (r *Runner) InstallBinary(ctx context.Context, appID, url, hash string) error {
	if err := library.ValidateAppID(appID); err != nil {
		return err
	}
	want, err := base64.StdEncoding.DecodeString(hash)
	if err != nil || len(want) != sha256.Size {
		return fmt.Errorf("%w: bad hash %q", ErrVerification, hash)
	}
	if err := os.MkdirAll(r.installRoot, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	// Download next to the destination so the final rename stays on one filesystem.
	archive, err := os.CreateTemp(r.installRoot, "."+appID+"-*.zip")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer os.Remove(archive.Name())
	defer archive.Close()

	r.status("Downloading " + appID)
	got, err := r.download(ctx, url, archive)
	if err != nil {
		return err
	}
	if string(got) != string(want) {
		log.Error().Msgf("Hash mismatch for %s: want %s, got %s", appID, hash, base64.StdEncoding.EncodeToString(got))
		return fmt.Errorf("%w: %s", ErrVerification, appID)
	}

	r.status("Extracting " + appID)
	staging, err := os.MkdirTemp(r.installRoot, "."+appID+"-staging-")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	defer os.RemoveAll(staging)

	if err := extractZip(archive.Name(), staging); err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if err := replaceDir(staging, r.AppDir(appID)); err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	r.status("Installed " + appID)
	log.Info().Msgf("Installed %s into %s", appID, r.AppDir(appID))
	return nil
}

// download streams url into dst and returns the SHA-256 of what it wrote. The copy
// and the progress reports run side by side so a slow channel never stalls the
// download.
func (r *Runner) download(ctx context.Context, url string, dst io.Writer) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrDownload, url, resp.Status)
	}

	total := resp.ContentLength
	event := func(n int64) progress.Event {
		if total < 0 {
			return progress.DownloadUnknownTotal(n)
		}
		return progress.Download(n, total)
	}

	hasher := sha256.New()
	counter := &countingWriter{}
	copied := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(copied)
		if _, err := io.Copy(io.MultiWriter(dst, hasher, counter), resp.Body); err != nil {
			return fmt.Errorf("%w: %w", ErrDownload, err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(r.reportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-copied:
				return nil
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				r.emitter.TryEmit(event(counter.n.Load()))
			}
		}
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := r.emitter.Emit(event(counter.n.Load())); err != nil {
		log.Warn().Err(err).Msg("Error writing progress")
	}
	return hasher.Sum(nil), nil
}

// UninstallBinary removes the app's install directory. Removing an app that is not
// there succeeds.
func (r *Runner) UninstallBinary(ctx context.Context, appID string) error {
	if err := library.ValidateAppID(appID); err != nil {
		return err
	}
	dir := r.AppDir(appID)
	r.status("Removing " + appID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: %w", ErrUninstall, err)
	}
	r.status("Removed " + appID)
	log.Info().Msgf("Removed %s", dir)
	return nil
}

type countingWriter struct {
	n atomic.Int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n.Add(int64(len(p)))
	return len(p), nil
}

func extractZip(archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, f := range zr.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes the install directory", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
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
		return err
	}
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// replaceDir moves staging into place at target. An existing target is moved aside
// first and only deleted once the new one is in place.
func replaceDir(staging, target string) error {
	old := ""
	if _, err := os.Stat(target); err == nil {
		old = target + ".old"
		if err := os.RemoveAll(old); err != nil {
			return err
		}
		if err := os.Rename(target, old); err != nil {
			return err
		}
	}
	if err := os.Rename(staging, target); err != nil {
		if old != "" {
			_ = os.Rename(old, target)
		}
		return err
	}
	if old != "" {
		if err := os.RemoveAll(old); err != nil {
			log.Warn().Err(err).Msgf("Error removing previous install at %s", old)
		}
	}
	return nil
}
