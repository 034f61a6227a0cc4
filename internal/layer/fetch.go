package layer

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// isRemote reports whether ref is an http(s) URL.
func isRemote(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// fetch downloads a remote layer into destDir and returns the local path.
// Downloads are named by a hash of the full URL, so layers sharing a file
// name do not collide, and an existing download is reused.
func fetch(ctx context.Context, client *http.Client, ref, destDir string) (string, error) {
	log := zap.L().With(
		zap.String("component", "layer.fetch"),
		zap.String("url", ref),
	)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "layer: create cache dir")
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", eris.Wrap(err, "layer: parse url")
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", eris.Errorf("layer: cannot derive file name from %s", ref)
	}
	dest := filepath.Join(destDir, downloadName(ref, name))

	if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
		log.Debug("layer already downloaded, skipping", zap.String("path", dest))
		return dest, nil
	}

	log.Info("downloading layer")
	if err := downloadFile(ctx, client, ref, dest); err != nil {
		return "", eris.Wrap(err, "layer: download")
	}
	return dest, nil
}

// downloadName prefixes name with a digest of the full reference.
func downloadName(ref, name string) string {
	h := sha256.Sum256([]byte(ref))
	return fmt.Sprintf("%x_%s", h[:8], name)
}

// downloadFile downloads a URL to dest. The body is written to a temporary
// file in the same directory and renamed into place only once complete.
func downloadFile(ctx context.Context, client *http.Client, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return eris.Wrap(err, "download")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("download returned status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".part-*")
	if err != nil {
		return eris.Wrap(err, "create temp file")
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "write file")
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "close file")
	}
	if err := os.Rename(tmp, dest); err != nil {
		return eris.Wrap(err, "move download into place")
	}

	return nil
}

// extractZIP extracts a ZIP archive to the destination directory. Entry
// directories are flattened.
func extractZIP(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return eris.Wrap(err, "open zip")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(f.Name)
		if strings.HasPrefix(name, ".") {
			continue
		}
		destPath := filepath.Join(destDir, name)

		rc, err := f.Open()
		if err != nil {
			return eris.Wrapf(err, "open zip entry %s", f.Name)
		}

		outFile, err := os.Create(destPath)
		if err != nil {
			_ = rc.Close()
			return eris.Wrapf(err, "create %s", destPath)
		}

		if _, err := io.Copy(outFile, rc); err != nil {
			_ = outFile.Close()
			_ = rc.Close()
			return eris.Wrapf(err, "extract %s", f.Name)
		}
		_ = outFile.Close()
		_ = rc.Close()
	}

	return nil
}

// findFileByExt finds the first file with one of the given extensions in a
// directory, trying extensions in order.
func findFileByExt(dir string, exts ...string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", eris.Wrap(err, "read directory")
	}
	for _, ext := range exts {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ext) {
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}
	return "", eris.Errorf("no %s file found in %s", strings.Join(exts, "/"), dir)
}
