package sample

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestCanonicalName(t *testing.T) {
	for _, test := range []struct {
		in, want string
	}{
		{"/data/s1.fna", "/data/s1.fasta"},
		{"/data/s1.fa", "/data/s1.fasta"},
		{"/data/s1.fq", "/data/s1.fastq"},
		{"/data/s1.fna.gz", "/data/s1.fasta.gz"},
		{"/data/s1.fa.gz", "/data/s1.fasta.gz"},
		{"/data/s1.fq.gz", "/data/s1.fastq.gz"},
		{"/data/s1.fastq", "/data/s1.fastq"},
		{"/data/s1.fasta.gz", "/data/s1.fasta.gz"},
		{"/data/s1.txt", "/data/s1.txt"},
		{"/data/reads.fq.other", "/data/reads.fq.other"},
	} {
		expect.EQ(t, CanonicalName(test.in), test.want, "input %q", test.in)
	}
}

func TestNormalizeSuffixRenames(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup)

	path := filepath.Join(tempDir, "s1.fq")
	assert.NoError(t, ioutil.WriteFile(path, []byte("@r1\nACGT\n+\nFFFF\n"), 0644))

	got, err := NormalizeSuffix(path)
	assert.NoError(t, err)
	assert.EQ(t, got, filepath.Join(tempDir, "s1.fastq"))

	data, err := ioutil.ReadFile(got)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "@r1\nACGT\n+\nFFFF\n")
	_, err = ioutil.ReadFile(path)
	expect.True(t, err != nil)
}

func TestNormalizeSuffixPassThrough(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup)

	path := filepath.Join(tempDir, "s1.fastq")
	assert.NoError(t, ioutil.WriteFile(path, []byte("@r1\n"), 0644))

	got, err := NormalizeSuffix(path)
	assert.NoError(t, err)
	assert.EQ(t, got, path)
}
