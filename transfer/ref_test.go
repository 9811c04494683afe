package transfer

import (
	"errors"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestParseRef(t *testing.T) {
	for _, test := range []struct {
		raw  string
		want Scheme
	}{
		{"s3://bucket/reads/s1.fastq.gz", S3},
		{"ftp://host.example.org/pub/s1.fastq.gz", FTP},
		{"sra://SRR1234567", Accession},
		{"/data/s1.fq", Local},
		{"relative/path.fastq", Local},
	} {
		ref, err := ParseRef(test.raw)
		expect.NoError(t, err, "ref %q", test.raw)
		expect.EQ(t, ref.Scheme, test.want, "ref %q", test.raw)
		expect.EQ(t, ref.Raw, test.raw)
	}
}

func TestParseRefUnrecognizedScheme(t *testing.T) {
	for _, raw := range []string{"gopher://x/y", "http://example.org/reads.fq"} {
		_, err := ParseRef(raw)
		expect.True(t, errors.Is(err, ErrUnrecognizedScheme), "ref %q", raw)
	}
}

func TestBase(t *testing.T) {
	for _, test := range []struct {
		raw, want string
	}{
		{"s3://bucket/reads/s1.fastq.gz", "s1.fastq.gz"},
		{"/data/s1.fq", "s1.fq"},
		{"sra://SRR1234567", "SRR1234567"},
		{"s3://bucket/dir/", "dir"},
		{"bare.fq", "bare.fq"},
	} {
		ref, err := ParseRef(test.raw)
		expect.NoError(t, err)
		expect.EQ(t, ref.Base(), test.want, "ref %q", test.raw)
	}
}
