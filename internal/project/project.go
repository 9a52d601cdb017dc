// Package project walks an RPG Maker project's data directory and runs
// extraction and reconstruction over every recognised file.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rpgm-translator/internal/category"
	"rpgm-translator/internal/document"
	"rpgm-translator/internal/unitfile"
	"rpgm-translator/internal/worker"

	"github.com/rs/zerolog/log"
)

// dataDirs are tried in order below the project root. MV deployments keep
// their data under www/.
var dataDirs = []string{"data", filepath.Join("www", "data")}

// FileEntry is a discovered data file.
type FileEntry struct {
	Path     string
	Name     string
	Category category.Category
}

// FileError is a failure confined to one data file.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.File, e.Err) }

func (e FileError) Unwrap() error { return e.Err }

// DataDir locates the directory holding the JSON data files of root.
func DataDir(root string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root is not a directory: %s", root)
	}

	for _, d := range dataDirs {
		candidate := filepath.Join(root, d)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return root, nil
}

// Walk discovers the recognised data files of a project, sorted by name.
func Walk(root string) (string, []FileEntry, error) {
	dir, err := DataDir(root)
	if err != nil {
		return "", nil, err
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil, fmt.Errorf("read data directory: %w", err)
	}

	var entries []FileEntry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		c := category.Detect(de.Name())
		if c == category.Unknown {
			if strings.EqualFold(filepath.Ext(de.Name()), ".json") {
				log.Debug().Str("file", de.Name()).Msg("Skipping file without translatable text")
			}
			continue
		}
		entries = append(entries, FileEntry{
			Path:     filepath.Join(dir, de.Name()),
			Name:     de.Name(),
			Category: c,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	log.Info().Int("count", len(entries)).Str("dir", dir).Msg("Discovered data files")
	return dir, entries, nil
}

// FileSummary counts the units extracted from one file.
type FileSummary struct {
	File     string
	Category category.Category
	Units    int
}

// ExtractResult is the outcome of ExtractProject.
type ExtractResult struct {
	Units  []document.ExtractedUnit
	Files  []FileSummary
	Errors []FileError
}

// ExtractProject extracts every recognised file of root using up to workers
// goroutines. Files that fail to parse are listed in Errors and skipped.
func ExtractProject(ctx context.Context, root string, workers int) (*ExtractResult, error) {
	_, entries, err := Walk(root)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool(workers, func(ctx context.Context, e FileEntry) ([]document.ExtractedUnit, error) {
		data, err := os.ReadFile(e.Path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return category.ExtractFile(data, e.Name)
	})

	result := &ExtractResult{}
	for _, task := range pool.Execute(ctx, entries) {
		if task.Err != nil {
			result.Errors = append(result.Errors, FileError{File: task.Input.Name, Err: task.Err})
			log.Error().Err(task.Err).Str("file", task.Input.Name).Msg("Extraction failed")
			continue
		}
		result.Units = append(result.Units, task.Result...)
		result.Files = append(result.Files, FileSummary{
			File:     task.Input.Name,
			Category: task.Input.Category,
			Units:    len(task.Result),
		})
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	log.Info().
		Int("files", len(result.Files)).
		Int("units", len(result.Units)).
		Int("errors", len(result.Errors)).
		Msg("Extraction complete")
	return result, nil
}

// ReconstructResult is the outcome of ReconstructProject.
type ReconstructResult struct {
	OutputDir string
	Reports   []*document.Report
	Errors    []FileError
}

// Applied sums applied units over all reports.
func (r *ReconstructResult) Applied() int {
	n := 0
	for _, rep := range r.Reports {
		n += rep.Applied
	}
	return n
}

// Skipped sums skipped units over all reports.
func (r *ReconstructResult) Skipped() int {
	n := 0
	for _, rep := range r.Reports {
		n += rep.Skipped()
	}
	return n
}

// ErrUnknownFile marks units whose source file is not part of the project.
var ErrUnknownFile = errors.New("no such data file in project")

type patchJob struct {
	entry FileEntry
	units []document.TranslatedUnit
}

// ReconstructProject patches every recognised file of root with units and
// writes the results to outDir/data. Files without units are written
// re-serialized. Per-file failures are listed in Errors.
func ReconstructProject(ctx context.Context, root, outDir string, units []document.TranslatedUnit, workers int) (*ReconstructResult, error) {
	_, entries, err := Walk(root)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(outDir, "data")

	byFile := make(map[string][]document.TranslatedUnit)
	for _, u := range units {
		byFile[u.SourceFile] = append(byFile[u.SourceFile], u)
	}

	result := &ReconstructResult{OutputDir: target}
	jobs := make([]patchJob, 0, len(entries))
	for _, e := range entries {
		jobs = append(jobs, patchJob{entry: e, units: byFile[e.Name]})
		delete(byFile, e.Name)
	}

	orphans := make([]string, 0, len(byFile))
	for name := range byFile {
		orphans = append(orphans, name)
	}
	sort.Strings(orphans)
	for _, name := range orphans {
		err := fmt.Errorf("%w (%d units)", ErrUnknownFile, len(byFile[name]))
		result.Errors = append(result.Errors, FileError{File: name, Err: err})
		log.Warn().Str("file", name).Int("units", len(byFile[name])).Msg("Units reference a file that is not in the project")
	}

	pool := worker.NewPool(workers, func(ctx context.Context, job patchJob) (*document.Report, error) {
		data, err := os.ReadFile(job.entry.Path)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		out, report, err := category.ReconstructFile(data, job.entry.Name, job.units)
		if err != nil {
			return nil, err
		}
		if err := unitfile.WriteFileAtomic(filepath.Join(target, job.entry.Name), out, 0o644); err != nil {
			return nil, err
		}
		return report, nil
	})

	for _, task := range pool.Execute(ctx, jobs) {
		if task.Err != nil {
			result.Errors = append(result.Errors, FileError{File: task.Input.entry.Name, Err: task.Err})
			log.Error().Err(task.Err).Str("file", task.Input.entry.Name).Msg("Reconstruction failed")
			continue
		}
		result.Reports = append(result.Reports, task.Result)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	log.Info().
		Int("files", len(result.Reports)).
		Int("applied", result.Applied()).
		Int("skipped", result.Skipped()).
		Int("errors", len(result.Errors)).
		Str("output", target).
		Msg("Reconstruction complete")
	return result, nil
}
