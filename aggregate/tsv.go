package aggregate

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMalformedRow reports a data row whose field count does not match the
// header.
var ErrMalformedRow = errors.New("row field count does not match header")

// Row is one parsed line of a tabular output file, keyed by column name.
type Row map[string]string

// ReadTSV parses a tab-separated file into rows.  When header is non-nil it
// names the columns and every line of the file is data; otherwise the first
// line, with a leading '#' stripped, supplies the column names.  Comment
// lines (leading '#') and blank lines are skipped.
func ReadTSV(path string, header []string) (rows []Row, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()

	inferHeader := header == nil
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if inferHeader && lineno == 1 {
			header = strings.Split(strings.TrimPrefix(line, "#"), "\t")
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			return nil, fmt.Errorf("%s line %d: %d fields for %d columns: %w",
				path, lineno, len(fields), len(header), ErrMalformedRow)
		}
		row := make(Row, len(header))
		for i, name := range header {
			row[name] = fields[i]
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}
