package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"rpgm-translator/internal/glossary"
	"rpgm-translator/internal/pipeline"
	"rpgm-translator/internal/project"

	"github.com/olekukonko/tablewriter"
)

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	return table
}

// printExtractSummary prints units per category, then failed files.
func printExtractSummary(out io.Writer, result *project.ExtractResult) {
	type row struct{ files, units int }
	byCategory := make(map[string]*row)
	for _, f := range result.Files {
		name := f.Category.String()
		r, ok := byCategory[name]
		if !ok {
			r = &row{}
			byCategory[name] = r
		}
		r.files++
		r.units += f.Units
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	table := newTable(out, []string{"Category", "Files", "Units"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, name := range names {
		r := byCategory[name]
		table.Append([]string{name, strconv.Itoa(r.files), strconv.Itoa(r.units)})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(len(result.Files)), strconv.Itoa(len(result.Units))})
	table.Render()

	printFileErrors(out, result.Errors)
}

func printTranslateSummary(out io.Writer, stats pipeline.Stats) {
	table := newTable(out, []string{"Run", "Units", "Unique", "Cached", "Passthrough", "Translated", "Failed"})
	table.Append([]string{
		stats.RunID,
		strconv.Itoa(stats.Units),
		strconv.Itoa(stats.Unique),
		strconv.Itoa(stats.Cached),
		strconv.Itoa(stats.Passthrough),
		strconv.Itoa(stats.Translated),
		strconv.Itoa(stats.Failed),
	})
	table.Render()
}

// printReconstructSummary prints applied and skipped units per file.
func printReconstructSummary(out io.Writer, result *project.ReconstructResult) {
	table := newTable(out, []string{"File", "Applied", "Skipped"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, r := range result.Reports {
		table.Append([]string{r.SourceFile, strconv.Itoa(r.Applied), strconv.Itoa(r.Skipped())})
	}
	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(result.Reports)),
		strconv.Itoa(result.Applied()),
		strconv.Itoa(result.Skipped()),
	})
	table.Render()

	printFileErrors(out, result.Errors)
}

func printFileErrors(out io.Writer, errs []project.FileError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(out)
	table := newTable(out, []string{"Failed File", "Error"})
	for _, e := range errs {
		table.Append([]string{e.File, e.Err.Error()})
	}
	table.Render()
}

func printGlossary(out io.Writer, terms []glossary.Term) {
	table := newTable(out, []string{"Term", "Translation", "Kind", "Defined In"})
	for _, t := range terms {
		table.Append([]string{t.Source, t.Target, t.Kind, t.SourceFile})
	}
	table.SetFooter([]string{fmt.Sprintf("Total Terms %d", len(terms)), "", "", ""})
	table.Render()
}
