package transfer

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/errors"

	"github.com/openmetagen/mgx/runlog"
)

// ftpAttempts bounds the retry loop for flaky public FTP mirrors.
const ftpAttempts = 3

// FetchFTP downloads a single ftp:// resource to destPath, retrying a fixed
// number of times.  Anonymous login only; the public read archives require
// nothing else.
func FetchFTP(ctx context.Context, log *runlog.Logger, rawURL, destPath string) error {
	return fetchWithRetry(log, rawURL, func() error {
		return fetchFTPOnce(ctx, rawURL, destPath)
	})
}

func fetchWithRetry(log *runlog.Logger, rawURL string, fetch func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = fetch(); err == nil {
			return nil
		}
		if attempt >= ftpAttempts {
			return errors.Wrapf(err, "ftp fetch %s after %d attempts", rawURL, attempt)
		}
		log.Infof("ftp fetch %s failed (attempt %d): %v", rawURL, attempt, err)
	}
}

func fetchFTPOnce(ctx context.Context, rawURL, destPath string) (err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	addr := u.Host
	if u.Port() == "" {
		addr += ":21"
	}
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return err
	}
	defer conn.Quit() // nolint: errcheck
	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return err
	}
	resp, err := conn.Retr(strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return err
	}
	defer resp.Close() // nolint: errcheck
	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, resp); err != nil {
		out.Close()         // nolint: errcheck
		os.Remove(destPath) // nolint: errcheck
		return err
	}
	return out.Close()
}
