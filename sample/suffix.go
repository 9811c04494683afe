package sample

import (
	"os"
	"strings"
)

// The downstream tools infer the input format from the file suffix and only
// accept the canonical spellings.  Compressed variants are listed first so
// "x.fq.gz" is never half-matched as "x.fq".
var suffixTable = []struct{ old, canonical string }{
	{".fna.gz", ".fasta.gz"},
	{".fa.gz", ".fasta.gz"},
	{".fq.gz", ".fastq.gz"},
	{".fna", ".fasta"},
	{".fa", ".fasta"},
	{".fq", ".fastq"},
}

// CanonicalName returns the name path would have after suffix
// normalization.  Paths with no recognized suffix are returned unchanged.
func CanonicalName(path string) string {
	for _, s := range suffixTable {
		if strings.HasSuffix(path, s.old) {
			return strings.TrimSuffix(path, s.old) + s.canonical
		}
	}
	return path
}

// NormalizeSuffix renames path in place to its canonical name and returns
// the new path.  At most one rename occurs.
func NormalizeSuffix(path string) (string, error) {
	canonical := CanonicalName(path)
	if canonical == path {
		return path, nil
	}
	if err := os.Rename(path, canonical); err != nil {
		return "", err
	}
	return canonical, nil
}
