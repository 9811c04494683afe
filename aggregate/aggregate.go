// Package aggregate collects the analysis tools' tabular outputs into the
// result record that gets published per sample.
package aggregate

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
)

var (
	// ErrDuplicateOutput reports two output files of the same kind in one
	// working directory.
	ErrDuplicateOutput = errors.New("duplicate output file")
	// ErrMissingOutput reports a required output kind with no file after a
	// full tool run.
	ErrMissingOutput = errors.New("missing output file")
)

// Results holds the parsed rows of each output kind.  The three pathway
// profiler kinds are always required; the taxonomic profile is present only
// when that step ran.
type Results struct {
	GeneFamilies []Row `json:"gene_families"`
	PathwayAbund []Row `json:"pathway_abund"`
	PathwayCov   []Row `json:"pathway_cov"`
	Metaphlan    []Row `json:"metaphlan,omitempty"`
}

// Parameters records how the sample was processed.
type Parameters struct {
	DB      string `json:"db"`
	Input   string `json:"input"`
	Threads int    `json:"threads"`
}

// Record is the published per-sample result document.
type Record struct {
	Results    Results    `json:"results"`
	Parameters Parameters `json:"parameters"`
	Logs       []string   `json:"logs"`
}

// Exactly one file per kind must appear in the working directory after the
// functional-pathway profiler runs.
var outputKinds = []struct {
	suffix string
	header []string
	field  func(*Results) *[]Row
}{
	{"_genefamilies.tsv", []string{"gene_family", "RPK"}, func(r *Results) *[]Row { return &r.GeneFamilies }},
	{"_pathabundance.tsv", []string{"pathway", "abund"}, func(r *Results) *[]Row { return &r.PathwayAbund }},
	{"_pathcoverage.tsv", []string{"pathway", "cov"}, func(r *Results) *[]Row { return &r.PathwayCov }},
}

// Scan classifies every file in dir by suffix and parses the matching ones.
// It fails if a kind matches twice or, after the scan, not at all.
func Scan(dir string) (Results, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return Results{}, err
	}
	var res Results
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, kind := range outputKinds {
			if !strings.HasSuffix(entry.Name(), kind.suffix) {
				continue
			}
			field := kind.field(&res)
			if *field != nil {
				return Results{}, fmt.Errorf("multiple *%s files in %s: %w", kind.suffix, dir, ErrDuplicateOutput)
			}
			rows, err := ReadTSV(filepath.Join(dir, entry.Name()), kind.header)
			if err != nil {
				return Results{}, err
			}
			if rows == nil {
				rows = []Row{}
			}
			*field = rows
			break
		}
	}
	for _, kind := range outputKinds {
		if *kind.field(&res) == nil {
			return Results{}, fmt.Errorf("no *%s file in %s: %w", kind.suffix, dir, ErrMissingOutput)
		}
	}
	return res, nil
}

// AddMetaphlan parses the taxonomic profiler's output file and merges it
// into the results as the fourth kind.
func (r *Results) AddMetaphlan(path string) error {
	rows, err := ReadTSV(path, []string{"taxon", "percent"})
	if err != nil {
		return err
	}
	r.Metaphlan = rows
	return nil
}
