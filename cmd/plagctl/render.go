package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/nostalgicskinco/plagiarism-detector/pkg/analysis"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/query"
	"github.com/nostalgicskinco/plagiarism-detector/pkg/similarity"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	alarmColor   = color.New(color.FgRed, color.Bold)
	okColor      = color.New(color.FgGreen, color.Bold)
)

func section(w io.Writer, title string) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(w)
	headingColor.Fprintln(w, rule)
	headingColor.Fprintln(w, title)
	headingColor.Fprintln(w, rule)
}

func printSummary(w io.Writer, rep analysis.Report) {
	section(w, "ANALYZING ESSAYS")
	fmt.Fprintf(w, "Essay 1 total words: %d\n", rep.DocumentA.TotalWords)
	fmt.Fprintf(w, "Essay 1 unique words: %d\n", rep.DocumentA.UniqueWords)
	fmt.Fprintf(w, "Essay 2 total words: %d\n", rep.DocumentB.TotalWords)
	fmt.Fprintf(w, "Essay 2 unique words: %d\n", rep.DocumentB.UniqueWords)
}

func printCommonWords(w io.Writer, rows []similarity.CommonWord) {
	section(w, "FINDING COMMON WORDS")
	fmt.Fprintf(w, "Number of common words: %d\n", len(rows))
	fmt.Fprintln(w, "\nCommon words and their frequencies:")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, r := range rows {
		fmt.Fprintf(w, "%-15s | Essay 1: %3d | Essay 2: %3d\n", r.Word, r.CountA, r.CountB)
	}
}

func printScore(w io.Writer, rep analysis.Report) {
	section(w, "CALCULATING PLAGIARISM PERCENTAGE")
	fmt.Fprintf(w, "Common words (intersection): %d\n", rep.Intersection)
	fmt.Fprintf(w, "Total unique words (union): %d\n", rep.Union)
	fmt.Fprintf(w, "Plagiarism percentage: %.2f%%\n", rep.Percentage)

	if rep.Flagged {
		alarmColor.Fprintln(w, "\nPLAGIARISM DETECTED!")
		fmt.Fprintf(w, "The essays show significant similarity (≥%g%%)\n", rep.Threshold)
		return
	}
	okColor.Fprintln(w, "\nNO PLAGIARISM DETECTED")
	fmt.Fprintf(w, "The essays show acceptable similarity (<%g%%)\n", rep.Threshold)
}

func printLookup(w io.Writer, res query.Result) {
	fmt.Fprintf(w, "\nSearch results for '%s':\n", res.Word)
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Essay 1: %d occurrences\n", res.CountA)
	fmt.Fprintf(w, "Essay 2: %d occurrences\n", res.CountB)
	if res.Found {
		fmt.Fprintf(w, "Word '%s' found!\n", res.Word)
		return
	}
	fmt.Fprintf(w, "Word '%s' not found in either essay.\n", res.Word)
}
