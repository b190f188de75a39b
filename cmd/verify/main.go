// Package main provides the verify command: check a markdown report's
// signature and anomaly table, and optionally re-sign it after an edit.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"madison/internal/formatter"
	"madison/internal/validator"
	"madison/pkg/metadata"
)

func main() {
	inputPath := flag.String("input", "", "Path to a markdown report (e.g., reports/madison_report.md)")
	sign := flag.Bool("sign", false, "Re-format and re-sign the report when its anomaly table is valid")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: verify -input <path> [-sign]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	contentBytes, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Error reading file: %v\n", err)
	}

	content := string(contentBytes)
	fmt.Printf("📂 Reading: %s (%d bytes)\n", *inputPath, len(content))

	v := validator.NewMarkdownValidator()

	// 1. Anomaly table
	fmt.Println("🔍 Checking anomaly table...")

	table := v.ValidateAnomalyTable(content)
	table.PrintErrors(os.Stdout)
	fmt.Println(table)

	if *sign {
		if !table.IsValid {
			fmt.Println("❌ Skipping signature due to validation failure.")
			os.Exit(1)
		}

		signReport(*inputPath, content)

		return
	}

	// 2. Signature
	fmt.Println("🔏 Checking signature...")

	if meta, _ := metadata.Extract(content); meta != nil {
		fmt.Printf("ℹ️  Run: %s | Version: %s | Signed: %s | Summary validated: %t\n",
			meta.RunID, meta.Version, meta.LastModify.Format("2006-01-02 15:04:05 MST"), meta.Validation)
	}

	integrity := v.ValidateIntegrity(content)
	integrity.PrintErrors(os.Stdout)

	if !integrity.IsValid || !table.IsValid {
		os.Exit(1)
	}

	fmt.Println("✅ Report verified")
}

func signReport(path, content string) {
	fmt.Println("✍️  Signing file...")

	meta, _ := metadata.Extract(content)

	formatted, err := formatter.FormatMarkdown(content)
	if err != nil {
		log.Fatalf("❌ Formatting failed: %v\n", err)
	}

	validated := meta != nil && meta.Validation
	signed := metadata.Sign(formatted, validated, meta)

	if err := os.WriteFile(path, []byte(signed), 0644); err != nil {
		log.Fatalf("Error writing file: %v\n", err)
	}

	fmt.Printf("✅ Signed and saved to: %s\n", path)
}
