package transfer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/file"
	"golang.org/x/sync/errgroup"

	"github.com/openmetagen/mgx/runlog"
)

// Exists reports whether an object or file is present at path.  The storage
// backend is chosen by the path's scheme.
func Exists(ctx context.Context, path string) bool {
	_, err := file.Stat(ctx, path)
	return err == nil
}

// Fetch downloads the single resource named by ref into destDir, keeping its
// basename, and returns the local path.  Local and Accession refs are not
// single downloadable resources and are rejected.
func Fetch(ctx context.Context, log *runlog.Logger, ref Ref, destDir string) (string, error) {
	dest := filepath.Join(destDir, ref.Base())
	log.Infof("fetching %s -> %s", ref.Raw, dest)
	switch ref.Scheme {
	case S3:
		if err := Copy(ctx, dest, ref.Raw); err != nil {
			return "", err
		}
		return dest, nil
	case FTP:
		if err := FetchFTP(ctx, log, ref.Raw, dest); err != nil {
			return "", err
		}
		return dest, nil
	}
	return "", fmt.Errorf("transfer.Fetch: %s reference %q is not fetchable", ref.Scheme, ref.Raw)
}

// Push copies a local file to dstPath, which may be an object-store URI or a
// local path.
func Push(ctx context.Context, dstPath, srcPath string) error {
	return Copy(ctx, dstPath, srcPath)
}

// Copy copies a single file between any two paths understood by
// grailbio/base/file.
func Copy(ctx context.Context, dstPath, srcPath string) (err error) {
	in, err := file.Open(ctx, srcPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, in, &err)
	out, err := file.Create(ctx, dstPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out.Writer(ctx), in.Reader(ctx)); err != nil {
		file.CloseAndReport(ctx, out, &err)
		return err
	}
	file.CloseAndReport(ctx, out, &err)
	return err
}

// SyncDir recursively mirrors the tree rooted at srcDir into dstDir,
// fanning the per-file copies out over goroutines.
func SyncDir(ctx context.Context, srcDir, dstDir string) error {
	// A trailing slash on srcDir would throw off the relative-path splice
	// below and scatter files next to dstDir instead of under it.
	srcDir = strings.TrimSuffix(srcDir, "/")
	eg := errgroup.Group{}
	lister := file.List(ctx, srcDir, true /*recursive*/)
	for lister.Scan() {
		path := lister.Path()
		eg.Go(func() error {
			return Copy(ctx, dstDir+path[len(srcDir):], path)
		})
	}
	err := eg.Wait()
	if e := lister.Err(); e != nil && err == nil {
		err = e
	}
	return err
}
