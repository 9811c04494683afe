package sample_test

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/openmetagen/mgx/runlog"
	"github.com/openmetagen/mgx/sample"
	"github.com/openmetagen/mgx/transfer"
)

func testLogger(t *testing.T, dir string) *runlog.Logger {
	t.Helper()
	l, err := runlog.Create(filepath.Join(dir, "run.log.txt"))
	assert.NoError(t, err)
	l.SetConsole(ioutil.Discard)
	return l
}

func TestResolveLocal(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup)
	log := testLogger(t, tempDir)

	path := filepath.Join(tempDir, "s1.fq")
	assert.NoError(t, ioutil.WriteFile(path, []byte("@r1\n"), 0644))

	ref, err := transfer.ParseRef(path)
	assert.NoError(t, err)
	got, err := sample.Resolve(context.Background(), log, ref, tempDir)
	assert.NoError(t, err)
	// Local samples are used in place, not copied into the working dir.
	assert.EQ(t, got, path)
}

func TestResolveLocalMissing(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup)
	log := testLogger(t, tempDir)

	ref, err := transfer.ParseRef(filepath.Join(tempDir, "nope.fq"))
	assert.NoError(t, err)
	_, err = sample.Resolve(context.Background(), log, ref, tempDir)
	expect.True(t, errors.Is(err, sample.ErrNotFound))
}

func TestResolveS3(t *testing.T) {
	// grailbio/base/file serves local paths through the same API as s3://,
	// so the object-store path of Resolve is exercised by fetching a
	// "remote" file that happens to be local.
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup)
	log := testLogger(t, tempDir)

	src := filepath.Join(tempDir, "remote", "s1.fastq.gz")
	assert.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	assert.NoError(t, ioutil.WriteFile(src, []byte("@r1\n"), 0644))

	workDir := filepath.Join(tempDir, "work")
	assert.NoError(t, os.MkdirAll(workDir, 0755))

	ref := transfer.Ref{Scheme: transfer.S3, Raw: src}
	got, err := sample.Resolve(context.Background(), log, ref, workDir)
	assert.NoError(t, err)
	assert.EQ(t, got, filepath.Join(workDir, "s1.fastq.gz"))
	data, err := ioutil.ReadFile(got)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "@r1\n")
}
