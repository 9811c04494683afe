package main

/*
mgx-profile runs taxonomic and functional-pathway profiling over a set of
metagenomic read samples and uploads one compressed result record per
sample.  Samples may live in object storage (s3://), on an FTP server
(ftp://), in a public read archive (sra://<accession>) or on the local
filesystem; the reference database may be an s3:// prefix or a local
directory.  Re-running over the same sample set is cheap: samples whose
output artifact already exists are skipped.
*/

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/openmetagen/mgx/pipeline"
	"github.com/openmetagen/mgx/refdb"
	"github.com/openmetagen/mgx/runlog"
)

var (
	input        = flag.String("input", "", "Comma-separated sample references (s3://, ftp://, sra://, or local paths)")
	refDB        = flag.String("ref-db", "", "Reference database location (s3:// or local path)")
	outputFolder = flag.String("output-folder", "", "Destination for result records (s3:// or local path)")
	tempFolder   = flag.String("temp-folder", pipeline.DefaultOpts.TempRoot, "Scratch root for working directories and database cache")
	threads      = flag.Int("threads", pipeline.DefaultOpts.Threads, "Number of threads for the analysis tools")
	metaphlanDB  = flag.String("metaphlan-db-prefix", pipeline.DefaultOpts.MetaphlanDBPrefix,
		"Path of the taxonomic profiler's database files relative to the reference database")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -input <samples> -ref-db <db> -output-folder <dst> [options]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if *input == "" || *refDB == "" || *outputFolder == "" {
		flag.Usage()
		log.Fatalf("-input, -ref-db and -output-folder are required")
	}
	if *threads < 1 {
		log.Fatalf("-threads must be a positive integer, got %d", *threads)
	}

	ctx := vcontext.Background()
	runLog, err := runlog.Create(uuid.New().String() + ".log.txt")
	if err != nil {
		log.Fatalf("creating run log: %v", err)
	}

	db, err := refdb.Provision(ctx, runLog, *refDB, *tempFolder)
	if err != nil {
		log.Fatalf("provisioning reference database: %v", err)
	}
	if err := db.Validate(); err != nil {
		log.Fatalf("%v", err)
	}
	runLog.Infof("reference database: %s", db.Path)
	runLog.Infof("threads: %d", *threads)

	p := pipeline.New(pipeline.Opts{
		RefDB:             *refDB,
		OutputFolder:      *outputFolder,
		TempRoot:          *tempFolder,
		Threads:           *threads,
		MetaphlanDBPrefix: *metaphlanDB,
	}, db, runLog)

	for _, sampleRef := range strings.Split(*input, ",") {
		sampleRef = strings.TrimSpace(sampleRef)
		if sampleRef == "" {
			continue
		}
		runLog.Infof("processing input argument: %s", sampleRef)
		if _, err := p.Process(ctx, sampleRef); err != nil {
			log.Fatalf("processing %s: %v", sampleRef, err)
		}
	}

	db.Cleanup(runLog)
	runLog.Infof("done")
	if err := runLog.Close(); err != nil {
		log.Fatalf("closing run log: %v", err)
	}
}
