package sample

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/compress"

	"github.com/openmetagen/mgx/runlog"
	"github.com/openmetagen/mgx/transfer"
)

// The European read archive mirrors every accession's fastq files under a
// directory derived from the accession itself.
const archiveBase = "ftp://ftp.sra.ebi.ac.uk/vol1/fastq"

// archiveDir derives the remote directory for an accession: the first six
// characters form the first-level subfolder, and accessions longer than nine
// characters add a second level holding the numeric suffix zero-padded to
// three digits (SRR12345678 -> SRR123/008/SRR12345678).
func archiveDir(accession string) (string, error) {
	if len(accession) < 6 || len(accession) > 12 {
		return "", fmt.Errorf("invalid accession %q: length must be 6-12 characters", accession)
	}
	dir := accession[:6]
	if len(accession) > 9 {
		suffix := accession[9:]
		dir += "/" + strings.Repeat("0", 3-len(suffix)) + suffix
	}
	return dir + "/" + accession, nil
}

// resolveAccession downloads whichever of the paired-end and single-end
// fastq variants exist for the accession, tolerating individual misses, and
// reassembles them into one uncompressed <accession>.fastq in workDir.
func resolveAccession(ctx context.Context, log *runlog.Logger, accession, workDir string) (string, error) {
	dir, err := archiveDir(accession)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, variant := range []string{
		accession + "_1.fastq.gz",
		accession + "_2.fastq.gz",
		accession + ".fastq.gz",
	} {
		dest := filepath.Join(workDir, variant)
		url := archiveBase + "/" + dir + "/" + variant
		if err := transfer.FetchFTP(ctx, log, url, dest); err != nil {
			log.Infof("no %s for %s: %v", variant, accession, err)
			continue
		}
		parts = append(parts, dest)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("accession %s: %w", accession, ErrFetch)
	}
	combined := filepath.Join(workDir, accession+".fastq")
	if err := concatDecompressed(combined, parts); err != nil {
		return "", err
	}
	for _, part := range parts {
		if err := os.Remove(part); err != nil {
			return "", err
		}
	}
	return combined, nil
}

// concatDecompressed appends the decompressed content of each part, in
// order, to a newly created file at dest.
func concatDecompressed(dest string, parts []string) (err error) {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = e
		}
	}()
	for _, part := range parts {
		if err = appendDecompressed(out, part); err != nil {
			return err
		}
	}
	return nil
}

func appendDecompressed(out io.Writer, part string) (err error) {
	in, err := os.Open(part)
	if err != nil {
		return err
	}
	defer func() {
		if e := in.Close(); e != nil && err == nil {
			err = e
		}
	}()
	reader, _ := compress.NewReaderPath(in, part)
	defer func() {
		if e := reader.Close(); e != nil && err == nil {
			err = e
		}
	}()
	_, err = io.Copy(out, reader)
	return err
}
