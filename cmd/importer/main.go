package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/locvowork/attrition_datahub/internal/bootstrap"
	"github.com/locvowork/attrition_datahub/internal/config"
	"github.com/locvowork/attrition_datahub/internal/database"
	"github.com/locvowork/attrition_datahub/internal/dataset"
	"github.com/locvowork/attrition_datahub/internal/importer"
	"github.com/locvowork/attrition_datahub/internal/logger"
	"github.com/locvowork/attrition_datahub/internal/report"
	"github.com/locvowork/attrition_datahub/internal/repository"
)

type options struct {
	target  string
	file    string
	clean   string
	verify  bool
	search  bool
	profile config.ImportProfile
}

func main() {
	os.Exit(run())
}

func run() int {
	target := flag.String("target", "all", "Store to import into: sql, mongo, all")
	file := flag.String("file", "", "Dataset path, .csv or .xlsx (default CSV_FILE_PATH)")
	clean := flag.String("clean", "ask", "Clean the store before import: ask, yes, no")
	verify := flag.Bool("verify", true, "Print verification statistics after import")
	search := flag.Bool("search", false, "Mirror imported employee documents into ELASTIC_URL")
	profilePath := flag.String("profile", "", "YAML import profile (default IMPORT_PROFILE_PATH)")
	flag.Parse()

	ctx := context.Background()

	if err := bootstrap.LoadEnvironment(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load env config: %v\n", err)
		return 1
	}

	if *profilePath == "" {
		*profilePath = config.DefaultEnvConfig.IMPORT_PROFILE_PATH
	}
	profile, err := config.LoadImportProfile(*profilePath)
	if err != nil {
		logger.ErrorLog(ctx, "Failed to load import profile: %v", err)
		return 1
	}

	opts := options{target: strings.ToLower(*target), file: *file, clean: *clean, verify: profile.Verify, search: *search, profile: profile}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "verify" {
			opts.verify = *verify
		}
	})
	if opts.file == "" {
		opts.file = config.DefaultEnvConfig.CSV_FILE_PATH
	}

	runSQL, runMongo, err := parseTarget(opts.target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		flag.PrintDefaults()
		return 2
	}

	fmt.Println("🚀 HR Attrition Data Importer")
	fmt.Println(strings.Repeat("=", 50))

	// the dataset is checked before any store is touched
	ds, err := dataset.Load(opts.file)
	if err != nil {
		logger.ErrorLog(ctx, "Failed to load dataset: %v", err)
		fmt.Printf("❌ Failed to load dataset %s: %v\n", opts.file, err)
		return 1
	}
	if err := dataset.Validate(ds); err != nil {
		logger.ErrorLog(ctx, "Dataset failed schema validation: %v", err)
		fmt.Printf("❌ %v\n", err)
		return 1
	}
	fmt.Printf("📄 Loaded %d rows from %s\n", len(ds.Rows), ds.Source)

	confirmer, err := importer.ParseCleanMode(opts.clean, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 2
	}

	failed := false
	if runSQL && !importSQL(ctx, ds, confirmer, opts) {
		failed = true
	}
	if runMongo && !importMongo(ctx, ds, confirmer, opts) {
		failed = true
	}

	if failed {
		fmt.Println("\n❌ Import aborted")
		return 1
	}
	fmt.Println("\n✅ Done!")
	return 0
}

func parseTarget(target string) (sqlOn, mongoOn bool, err error) {
	switch target {
	case "sql":
		return true, false, nil
	case "mongo":
		return false, true, nil
	case "all", "":
		return true, true, nil
	default:
		return false, false, fmt.Errorf("unknown target %q (want sql, mongo or all)", target)
	}
}

// importSQL runs the relational engine and reports whether it completed.
func importSQL(ctx context.Context, ds *dataset.Dataset, confirmer importer.Confirmer, opts options) bool {
	fmt.Println("\n📡 Connecting to SQL store...")
	client, err := database.OpenSQL(ctx, bootstrap.SQLConfig())
	if err != nil {
		logger.ErrorLog(ctx, "Failed to connect to SQL store: %v", err)
		fmt.Printf("❌ %v\n", err)
		return false
	}
	defer client.Close()

	if opts.profile.EnsureSchema {
		if err := client.EnsureSchema(ctx); err != nil {
			logger.ErrorLog(ctx, "Failed to ensure SQL schema: %v", err)
			fmt.Printf("❌ %v\n", err)
			return false
		}
	}

	engine := importer.NewRelationalEngine(client, importer.Options{Confirmer: confirmer, BatchSize: opts.profile.BatchSize})
	summary := engine.Run(ctx, ds)
	importer.WriteSummary(os.Stdout, summary)
	if summary.Aborted() {
		return false
	}

	if opts.verify {
		stats := repository.NewSQLStatsRepository(client, opts.profile.RiskProcedure)
		rep, err := importer.Verify(ctx, summary, report.NewSQLReporter(stats, opts.profile.SampleEmployeeNumber))
		printReport(ctx, summary, rep, err)
	}
	return true
}

// importMongo runs the document engine and reports whether it completed.
func importMongo(ctx context.Context, ds *dataset.Dataset, confirmer importer.Confirmer, opts options) bool {
	fmt.Println("\n📡 Connecting to MongoDB...")
	client, err := database.OpenMongo(ctx, bootstrap.MongoConfig())
	if err != nil {
		logger.ErrorLog(ctx, "Failed to connect to MongoDB: %v", err)
		fmt.Printf("❌ %v\n", err)
		return false
	}
	defer func() {
		if err := client.Close(context.WithoutCancel(ctx)); err != nil {
			logger.ErrorLog(ctx, "Failed to disconnect from MongoDB: %v", err)
		}
	}()

	engine := importer.NewDocumentEngine(client, importer.Options{Confirmer: confirmer, BatchSize: opts.profile.DocumentBatchSize})
	if opts.search {
		es, err := bootstrap.SearchClient()
		switch {
		case err != nil:
			logger.WarnLog(ctx, "Search mirror disabled: %v", err)
		case es == nil:
			logger.WarnLog(ctx, "Search mirror requested but ELASTIC_URL is not set")
		default:
			engine.WithSearchMirror(es)
		}
	}

	summary := engine.Run(ctx, ds)
	importer.WriteSummary(os.Stdout, summary)
	if summary.Aborted() {
		return false
	}

	if opts.verify {
		stats := repository.NewDocumentStatsRepository(client.Database())
		rep, err := importer.Verify(ctx, summary, report.NewDocumentReporter(stats, opts.profile.SampleEmployeeNumber))
		printReport(ctx, summary, rep, err)
	}
	return true
}

// printReport renders whatever was collected. Verification errors never fail the run.
func printReport(ctx context.Context, summary *importer.Summary, rep *report.Report, err error) {
	if err != nil {
		logger.WarnLog(ctx, "Verification incomplete: %v", err)
	}
	if rep == nil {
		return
	}
	fmt.Printf("\nState: %s\n", summary.State)
	if err := report.Render(os.Stdout, rep); err != nil {
		logger.ErrorLog(ctx, "Failed to render verification report: %v", err)
	}
}
