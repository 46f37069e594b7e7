//go:build ignore
// +build ignore

// This script prints every sheet of an Excel advisor report for verification.
// Run with: go run scripts/dump_report.go reports/advisor_report_2026-01-02.xlsx
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/dump_report.go <report.xlsx>")
		os.Exit(1)
	}

	f, err := excelize.OpenFile(os.Args[1])
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Println("📊 Sheets:", f.GetSheetList())
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Println()
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  %s (%d 行)\n", sheet, len(rows))
		fmt.Println("═══════════════════════════════════════")
		for _, row := range rows {
			fmt.Println("  " + strings.Join(row, " | "))
		}
	}
}
