// Package transfer moves sample reads, reference databases and result
// artifacts between remote locations (s3://, ftp://, sequencing-archive
// accessions) and the local working directory.  Object-store and local paths
// go through grailbio/base/file, so every caller is scheme-agnostic; FTP has
// its own small client.
package transfer

import (
	"errors"
	"fmt"
	"strings"
)

// Scheme identifies how a reference is fetched.  References are parsed once,
// up front, so downstream dispatch is over a closed set rather than repeated
// string-prefix checks.
type Scheme int

const (
	// Local is a plain filesystem path.
	Local Scheme = iota
	// S3 is an object-store URI.
	S3
	// FTP is a single FTP resource.
	FTP
	// Accession names a sequencing-read archive entry by its trailing path
	// segment, e.g. sra://SRR1234567.
	Accession
)

func (s Scheme) String() string {
	switch s {
	case Local:
		return "local"
	case S3:
		return "s3"
	case FTP:
		return "ftp"
	case Accession:
		return "accession"
	}
	return fmt.Sprintf("scheme(%d)", int(s))
}

// ErrUnrecognizedScheme reports a reference with a scheme prefix this
// pipeline does not support.
var ErrUnrecognizedScheme = errors.New("unrecognized URI scheme")

// Ref is a parsed sample or database reference.
type Ref struct {
	Scheme Scheme
	// Raw is the reference exactly as supplied by the caller.
	Raw string
}

// ParseRef classifies a reference by its scheme prefix.  Anything without a
// "scheme://" prefix is a local path.
func ParseRef(s string) (Ref, error) {
	switch {
	case strings.HasPrefix(s, "s3://"):
		return Ref{Scheme: S3, Raw: s}, nil
	case strings.HasPrefix(s, "ftp://"):
		return Ref{Scheme: FTP, Raw: s}, nil
	case strings.HasPrefix(s, "sra://"):
		return Ref{Scheme: Accession, Raw: s}, nil
	}
	if strings.Contains(s, "://") {
		return Ref{}, fmt.Errorf("%q: %w", s, ErrUnrecognizedScheme)
	}
	return Ref{Scheme: Local, Raw: s}, nil
}

// Base returns the trailing path segment of the reference.  It names the
// downloaded file, the output artifact and (for accessions) the archive
// entry.
func (r Ref) Base() string {
	s := strings.TrimSuffix(r.Raw, "/")
	return s[strings.LastIndex(s, "/")+1:]
}
