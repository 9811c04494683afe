// Package pipeline drives the per-sample processing sequence: skip-if-done
// check, fetch, suffix normalization, the two profiler invocations, output
// aggregation and publishing.  Samples run strictly one after another; the
// first fatal error aborts the whole run.
package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/openmetagen/mgx/aggregate"
	"github.com/openmetagen/mgx/refdb"
	"github.com/openmetagen/mgx/runlog"
	"github.com/openmetagen/mgx/runner"
	"github.com/openmetagen/mgx/sample"
	"github.com/openmetagen/mgx/transfer"
)

// Opts configures a run.
type Opts struct {
	// RefDB is the database reference as supplied by the user; recorded in
	// each result's parameters.
	RefDB string
	// OutputFolder receives one <sample_basename>.json.gz per sample.  May
	// be an object-store URI or a local directory.
	OutputFolder string
	// TempRoot is the scratch directory under which per-sample working
	// directories are created.
	TempRoot string
	// Threads configures the analysis tools' internal parallelism.
	Threads int
	// MetaphlanDBPrefix is the path of the taxonomic profiler's database
	// files relative to the reference database.  The taxonomic step runs
	// only when this subpath exists.
	MetaphlanDBPrefix string

	// MetaphlanBin and HumannBin name the tool executables.  Overridden in
	// tests.
	MetaphlanBin string
	HumannBin    string
}

var DefaultOpts = Opts{
	TempRoot:          "/share",
	Threads:           1,
	MetaphlanDBPrefix: "metaphlan/mpa_v20_m200",
	MetaphlanBin:      "metaphlan2",
	HumannBin:         "humann2",
}

// Pipeline processes samples against one provisioned reference database.
type Pipeline struct {
	opts Opts
	db   refdb.DB
	log  *runlog.Logger
	run  *runner.Runner
}

func New(opts Opts, db refdb.DB, log *runlog.Logger) *Pipeline {
	if opts.MetaphlanBin == "" {
		opts.MetaphlanBin = DefaultOpts.MetaphlanBin
	}
	if opts.HumannBin == "" {
		opts.HumannBin = DefaultOpts.HumannBin
	}
	return &Pipeline{
		opts: opts,
		db:   db,
		log:  log.WithComponent("pipeline"),
		run:  runner.New(log),
	}
}

// OutputPath returns where the result artifact for ref is published.
func (p *Pipeline) OutputPath(ref transfer.Ref) string {
	return strings.TrimSuffix(p.opts.OutputFolder, "/") + "/" + ref.Base() + ".json.gz"
}

// Process runs one sample end to end.  It returns skipped=true without
// reprocessing when the output artifact already exists.  The sample's
// working directory is removed whether processing succeeded or not.
func (p *Pipeline) Process(ctx context.Context, rawRef string) (skipped bool, err error) {
	ref, err := transfer.ParseRef(rawRef)
	if err != nil {
		return false, err
	}
	outPath := p.OutputPath(ref)
	if transfer.Exists(ctx, outPath) {
		p.log.Infof("output already exists (%s), skipping %s", outPath, rawRef)
		return true, nil
	}

	workDir := filepath.Join(p.opts.TempRoot, uuid.New().String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return false, err
	}
	defer func() {
		if e := os.RemoveAll(workDir); e != nil {
			// Cleanup failure must not mask the primary outcome.
			p.log.Errorf("removing working directory %s: %v", workDir, e)
		}
	}()

	input, err := sample.Resolve(ctx, p.log, ref, workDir)
	if err != nil {
		return false, err
	}
	input, err = sample.NormalizeSuffix(input)
	if err != nil {
		return false, err
	}

	taxProfile, err := p.runMetaphlan(ctx, input, workDir, ref.Base())
	if err != nil {
		return false, err
	}
	if err := p.runHumann(ctx, input, workDir, taxProfile); err != nil {
		return false, err
	}

	results, err := aggregate.Scan(workDir)
	if err != nil {
		return false, err
	}
	if taxProfile != "" {
		if err := results.AddMetaphlan(taxProfile); err != nil {
			return false, err
		}
	}
	p.log.Infof("reading in the logs")
	logs, err := p.log.Lines()
	if err != nil {
		return false, err
	}
	rec := aggregate.Record{
		Results: results,
		Parameters: aggregate.Parameters{
			DB:      p.opts.RefDB,
			Input:   rawRef,
			Threads: p.opts.Threads,
		},
		Logs: logs,
	}
	if err := p.publish(ctx, rec, workDir, ref.Base(), outPath); err != nil {
		return false, err
	}
	return false, nil
}

// runMetaphlan runs the taxonomic profiler when its database files are
// present under the reference database, returning the profile path or ""
// when the step was skipped.
func (p *Pipeline) runMetaphlan(ctx context.Context, input, workDir, base string) (string, error) {
	dbPrefix := filepath.Join(p.db.Path, p.opts.MetaphlanDBPrefix)
	if _, err := os.Stat(dbPrefix); err != nil {
		p.log.Infof("no taxonomic database at %s, skipping taxonomic profiling", dbPrefix)
		return "", nil
	}
	profile := filepath.Join(workDir, base+"_metaphlan.tsv")
	err := p.run.Run(ctx, runner.Opts{}, p.opts.MetaphlanBin,
		input,
		"--input_type", "fastq",
		"--bowtie2db", dbPrefix,
		"--nproc", strconv.Itoa(p.opts.Threads),
		"-o", profile)
	if err != nil {
		return "", err
	}
	return profile, nil
}

// runHumann runs the functional-pathway profiler, guided by the taxonomic
// profile when one was produced.
func (p *Pipeline) runHumann(ctx context.Context, input, workDir, taxProfile string) error {
	argv := []string{p.opts.HumannBin,
		"--input", input,
		"--output", workDir,
		"--nucleotide-database", filepath.Join(p.db.Path, "chocophlan"),
		"--protein-database", filepath.Join(p.db.Path, "uniref"),
		"--threads", strconv.Itoa(p.opts.Threads)}
	if taxProfile != "" {
		argv = append(argv, "--taxonomic-profile", taxProfile)
	}
	return p.run.Run(ctx, runner.Opts{}, argv...)
}

// publish serializes the record, compresses it inside the working directory
// and copies the artifact to the output target.
func (p *Pipeline) publish(ctx context.Context, rec aggregate.Record, workDir, base, outPath string) (err error) {
	tmp := filepath.Join(workDir, base+".json.gz")
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	if err = json.NewEncoder(gz).Encode(rec); err != nil {
		f.Close() // nolint: errcheck
		return err
	}
	if err = gz.Close(); err != nil {
		f.Close() // nolint: errcheck
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	p.log.Infof("publishing %s", outPath)
	return transfer.Push(ctx, outPath, tmp)
}
