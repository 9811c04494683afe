// Package sample turns a sample reference into a local, readably-named
// input file for the analysis tools.
package sample

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openmetagen/mgx/runlog"
	"github.com/openmetagen/mgx/transfer"
)

// ErrNotFound reports a local sample reference that does not exist.
var ErrNotFound = errors.New("sample file not found")

// ErrFetch reports that none of a sample's remote read files could be
// downloaded.
var ErrFetch = errors.New("no read files could be fetched")

// Resolve produces a local file for ref inside workDir.  Local references
// are used in place; remote references are downloaded, and accession
// references are reassembled from their archive parts (see
// resolveAccession).
func Resolve(ctx context.Context, log *runlog.Logger, ref transfer.Ref, workDir string) (string, error) {
	log.Infof("resolving sample %s", ref.Raw)
	switch ref.Scheme {
	case transfer.Local:
		if _, err := os.Stat(ref.Raw); err != nil {
			return "", fmt.Errorf("%s: %w", ref.Raw, ErrNotFound)
		}
		return ref.Raw, nil
	case transfer.S3, transfer.FTP:
		return transfer.Fetch(ctx, log, ref, workDir)
	case transfer.Accession:
		return resolveAccession(ctx, log, ref.Base(), workDir)
	}
	return "", fmt.Errorf("sample.Resolve: unhandled scheme %v", ref.Scheme)
}
