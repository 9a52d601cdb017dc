package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"rpgm-translator/internal/config"
	"rpgm-translator/internal/document"
	"rpgm-translator/internal/glossary"
	"rpgm-translator/internal/project"
	"rpgm-translator/internal/store"
	"rpgm-translator/internal/unitfile"

	"github.com/rs/zerolog/log"
)

// errFilesFailed is returned after a command finished with per-file errors.
var errFilesFailed = errors.New("some files failed")

// runExtract handles the `extract` command.
func runExtract(ctx context.Context, cfg *config.Config, out io.Writer, projectDir, unitsPath string) error {
	result, err := project.ExtractProject(ctx, projectDir, cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("extract project: %w", err)
	}

	if err := unitfile.WriteJSON(unitsPath, result.Units); err != nil {
		return fmt.Errorf("write units: %w", err)
	}
	log.Info().Str("path", unitsPath).Int("units", len(result.Units)).Msg("Units written")

	printExtractSummary(out, result)

	if len(result.Errors) > 0 {
		return fmt.Errorf("extract: %d files: %w", len(result.Errors), errFilesFailed)
	}
	return nil
}

// runTranslate handles the `translate` command.
func runTranslate(ctx context.Context, cfg *config.Config, out io.Writer, unitsPath, translatedPath string) error {
	units, err := unitfile.ReadExtracted(unitsPath)
	if err != nil {
		return fmt.Errorf("read units: %w", err)
	}
	_, err = translateUnits(ctx, cfg, out, units, translatedPath)
	return err
}

func translateUnits(ctx context.Context, cfg *config.Config, out io.Writer, units []document.ExtractedUnit, translatedPath string) ([]document.TranslatedUnit, error) {
	deps, err := initDependencies(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer deps.close(context.WithoutCancel(ctx))

	log.Info().
		Int("units", len(units)).
		Str("source", cfg.SourceLang).
		Str("target", cfg.TargetLang).
		Str("model", cfg.LLMModel).
		Msg("Starting translation")

	translated, stats := deps.translator(cfg).TranslateUnits(ctx, units)

	// Failed units keep their source text, so a partial set is still usable.
	if err := unitfile.WriteJSON(translatedPath, translated); err != nil {
		return nil, fmt.Errorf("write translated units: %w", err)
	}
	log.Info().Str("path", translatedPath).Msg("Translated units written")

	printTranslateSummary(out, stats)

	if err := ctx.Err(); err != nil {
		return translated, err
	}
	return translated, nil
}

// runReconstruct handles the `reconstruct` command.
func runReconstruct(ctx context.Context, cfg *config.Config, out io.Writer, projectDir, translatedPath, outputDir string) error {
	units, err := unitfile.ReadTranslated(translatedPath)
	if err != nil {
		return fmt.Errorf("read translated units: %w", err)
	}
	return reconstruct(ctx, cfg, out, projectDir, outputDir, units)
}

func reconstruct(ctx context.Context, cfg *config.Config, out io.Writer, projectDir, outputDir string, units []document.TranslatedUnit) error {
	result, err := project.ReconstructProject(ctx, projectDir, outputDir, units, cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("reconstruct project: %w", err)
	}

	reportPath := filepath.Join(outputDir, "report.json")
	if err := unitfile.WriteJSON(reportPath, result.Reports); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printReconstructSummary(out, result)

	if len(result.Errors) > 0 {
		return fmt.Errorf("reconstruct: %d files: %w", len(result.Errors), errFilesFailed)
	}
	return nil
}

// runAll handles the `run` command.
func runAll(ctx context.Context, cfg *config.Config, out io.Writer, projectDir, outputDir string) error {
	extracted, err := project.ExtractProject(ctx, projectDir, cfg.WorkerCount)
	if err != nil {
		return fmt.Errorf("extract project: %w", err)
	}
	printExtractSummary(out, extracted)

	if err := unitfile.WriteJSON(filepath.Join(outputDir, "units.json"), extracted.Units); err != nil {
		return fmt.Errorf("write units: %w", err)
	}

	translated, err := translateUnits(ctx, cfg, out, extracted.Units, filepath.Join(outputDir, "translated.json"))
	if err != nil {
		return err
	}

	if err := reconstruct(ctx, cfg, out, projectDir, outputDir, translated); err != nil {
		return err
	}
	if len(extracted.Errors) > 0 {
		return fmt.Errorf("extract: %d files: %w", len(extracted.Errors), errFilesFailed)
	}
	return nil
}

// runExport handles the `export` command.
func runExport(translatedPath, tsvPath string) error {
	units, err := unitfile.ReadTranslated(translatedPath)
	if err != nil {
		return fmt.Errorf("read translated units: %w", err)
	}
	if err := unitfile.ExportTSV(tsvPath, units); err != nil {
		return fmt.Errorf("export TSV: %w", err)
	}
	return nil
}

// runMigrate handles the `migrate` command.
func runMigrate(ctx context.Context, cfg *config.Config) error {
	return store.Migrate(ctx, cfg.DatabaseURL)
}

// runGlossary handles the `glossary` command.
func runGlossary(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if cfg.Neo4jURI == "" {
		return errors.New("NEO4J_URI is empty")
	}
	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(context.WithoutCancel(ctx))

	terms, err := glossary.NewGraph(driver, cfg.SourceLang, cfg.TargetLang).All(ctx)
	if err != nil {
		return fmt.Errorf("list glossary terms: %w", err)
	}
	printGlossary(out, terms)
	return nil
}
