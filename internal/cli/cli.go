package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rpgm-translator/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpgm-translator",
		Short: "Extract, translate and rebuild RPG Maker MV/MZ data files",
		Long: `Extracts player-visible text from an RPG Maker MV/MZ project's data files,
translates it with a local LLM server using a glossary, a translation cache and
a translation memory, and writes patched copies of the data files.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(translateCmd())
	rootCmd.AddCommand(reconstructCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(glossaryCmd())

	return rootCmd
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <project-dir> <units.json>",
		Short: "Extract translatable text units from a project's data files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runExtract(ctx, loadConfig(), cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func translateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <units.json> <translated.json>",
		Short: "Translate an extracted unit set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			cfg := loadConfig()
			applyLangFlags(cmd, cfg)
			return runTranslate(ctx, cfg, cmd.OutOrStdout(), args[0], args[1])
		},
	}
	addLangFlags(cmd)
	return cmd
}

func reconstructCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconstruct <project-dir> <translated.json> <output-dir>",
		Short: "Write patched data files from a translated unit set",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runReconstruct(ctx, loadConfig(), cmd.OutOrStdout(), args[0], args[1], args[2])
		},
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <project-dir> <output-dir>",
		Short: "Extract, translate and reconstruct in one pass",
		Long: `Runs extract, translate and reconstruct back to back. The intermediate unit
sets are kept in the output directory as units.json and translated.json.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			cfg := loadConfig()
			applyLangFlags(cmd, cfg)
			return runAll(ctx, cfg, cmd.OutOrStdout(), args[0], args[1])
		},
	}
	addLangFlags(cmd)
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <translated.json> <out.tsv>",
		Short: "Export a translated unit set as a TSV review sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loadConfig()
			return runExport(args[0], args[1])
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the cache and translation memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			return runMigrate(ctx, loadConfig())
		},
	}
}

func glossaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glossary",
		Short: "List the glossary terms stored in Neo4j",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()
			cfg := loadConfig()
			applyLangFlags(cmd, cfg)
			return runGlossary(ctx, cfg, cmd.OutOrStdout())
		},
	}
	addLangFlags(cmd)
	return cmd
}

func addLangFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Source language (overrides SOURCE_LANG)")
	cmd.Flags().String("target", "", "Target language (overrides TARGET_LANG)")
}

func applyLangFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("source"); v != "" {
		cfg.SourceLang = v
	}
	if v, _ := cmd.Flags().GetString("target"); v != "" {
		cfg.TargetLang = v
	}
}

func loadConfig() *config.Config {
	cfg := config.Load()
	zerolog.SetGlobalLevel(cfg.LogLevel)
	return cfg
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
