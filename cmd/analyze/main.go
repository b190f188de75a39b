// Package main provides the analyze command: statistics and anomalies for a
// CPU CSV file without news or narrative.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"madison/internal/analysis"
	"madison/internal/config"
	"madison/internal/formatter"
	"madison/internal/logger"
	"madison/internal/normalizer"
	"madison/internal/report"
	"madison/internal/source"
)

func main() {
	input := flag.String("file", "", "Local CSV file or URL with timestamp,value rows")
	sigma := flag.Float64("sigma", analysis.DefaultSigmaMultiplier, "Anomaly threshold in standard deviations")
	step := flag.Int("step", source.DefaultSampleStep, "Keep every Nth data row")
	asJSON := flag.Bool("json", false, "Print only the summary JSON")
	strict := flag.Bool("strict", false, "Fail when any parsed record is invalid instead of dropping it")
	flag.Parse()

	if *input == "" {
		fmt.Println("Usage: analyze -file <path|url> [-sigma 1.5] [-step 200] [-strict] [-json]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *sigma < 0 || *step < 1 {
		log.Fatalf("❌ -sigma must be >= 0 and -step >= 1\n")
	}

	sc := config.SourceConfig{Type: config.SourceTypeCSV, Key: "kaggle_nab", SampleStep: *step, Enabled: true}
	if strings.HasPrefix(*input, "http://") || strings.HasPrefix(*input, "https://") {
		sc.URL = *input
	} else {
		sc.File = *input
	}

	src, err := source.NewFromConfig(sc, source.Deps{Log: logger.NewLogger("warn")})
	if err != nil {
		log.Fatalf("❌ %v\n", err)
	}

	batch, err := src.Fetch(context.Background())
	if err != nil {
		log.Fatalf("❌ Failed to read %s: %v\n", *input, err)
	}

	processor := normalizer.NewProcessor()
	if *strict {
		processor = normalizer.NewStrictProcessor()
	}

	ds, err := processor.Process(batch.Records)
	if err != nil {
		log.Fatalf("❌ Normalization failed: %v\n", err)
	}

	summary := analysis.ComputeStatistics(ds.Metrics, *sigma)
	if summary.IsEmpty() {
		log.Fatalf("❌ No metric rows found in %s\n", *input)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Fatalf("❌ %v\n", err)
	}

	if *asJSON {
		fmt.Println(string(out))

		return
	}

	fmt.Printf("📊 %d records (%d rows dropped)\n\n", summary.TotalRecords, len(batch.ParseErrors))
	fmt.Println(string(out))
	fmt.Printf("\nSystem Health: %s\n", analysis.HealthFor(summary.PotentialAnomaliesCount))

	if len(summary.PotentialAnomalies) == 0 {
		fmt.Println("✅ No values above the threshold")

		return
	}

	fmt.Println()

	headers := []string{"Record ID", "Timestamp", "CPU (%)", "Severity"}
	for _, line := range formatter.Table(headers, report.AnomalyRows(summary.PotentialAnomalies)) {
		fmt.Println(line)
	}
}
