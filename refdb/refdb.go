// Package refdb provisions the shared reference database for a run.  The
// database is resolved once, read by every sample, and deleted at the end of
// the run only if it was downloaded rather than supplied as a local path.
package refdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/grailbio/base/errors"

	"github.com/openmetagen/mgx/runlog"
	"github.com/openmetagen/mgx/transfer"
)

// Subdirectories every usable reference database must contain: the
// nucleotide database and the protein database consumed by the
// functional-pathway profiler.
var requiredSubdirs = []string{"chocophlan", "uniref"}

// DB is a provisioned reference database.
type DB struct {
	Path string
	// Owned is set when the database was downloaded into tempRoot and the
	// run must delete it on completion.
	Owned bool
}

// Provision resolves dbRef into a local directory.  Object-store references
// are mirrored into a uniquely named directory under tempRoot; anything else
// is treated as a local path that must already exist.
func Provision(ctx context.Context, log *runlog.Logger, dbRef, tempRoot string) (DB, error) {
	ref, err := transfer.ParseRef(dbRef)
	if err != nil {
		return DB{}, err
	}
	switch ref.Scheme {
	case transfer.S3:
		local := filepath.Join(tempRoot, uuid.New().String()+".db")
		log.Infof("mirroring reference database %s -> %s", dbRef, local)
		if err := transfer.SyncDir(ctx, dbRef, local); err != nil {
			return DB{}, errors.E(err, fmt.Sprintf("mirroring reference database %s", dbRef))
		}
		return DB{Path: local, Owned: true}, nil
	case transfer.Local:
		log.Infof("using local reference database %s", dbRef)
		if _, err := os.Stat(dbRef); err != nil {
			return DB{}, errors.E(err, fmt.Sprintf("reference database %s not found", dbRef))
		}
		return DB{Path: dbRef, Owned: false}, nil
	}
	return DB{}, errors.E(fmt.Sprintf("reference database %s: scheme %v not supported", dbRef, ref.Scheme))
}

// Validate checks that the required database subdirectories are present.
// Their absence is a configuration error and fatal before any sample runs.
func (db DB) Validate() error {
	for _, sub := range requiredSubdirs {
		if _, err := os.Stat(filepath.Join(db.Path, sub)); err != nil {
			return errors.E(fmt.Sprintf("reference database %s is missing the %s subdirectory", db.Path, sub))
		}
	}
	return nil
}

// Cleanup deletes the database directory if this run owns it.
func (db DB) Cleanup(log *runlog.Logger) {
	if !db.Owned {
		return
	}
	log.Infof("deleting reference database %s", db.Path)
	if err := os.RemoveAll(db.Path); err != nil {
		log.Errorf("deleting reference database %s: %v", db.Path, err)
	}
}
