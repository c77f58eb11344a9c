package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"pdfsearch/internal/config"
	"pdfsearch/internal/domain"
	"pdfsearch/internal/eval"
	"pdfsearch/internal/extractor"
	"pdfsearch/internal/logging"
	"pdfsearch/internal/pdfgen"
	"pdfsearch/internal/service"
	"pdfsearch/internal/tui"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfgPath string
	cfg     *config.AppConfig
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "pdfsearch",
		Short:         "Question answering over a folder of PDFs",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", "",
		"Path to YAML config file (optional; uses ./config.yaml or ~/.config/pdfsearch/config.yaml)")

	rootCmd.AddCommand(a.ingestCmd(), a.queryCmd(), a.generateCmd(), a.evalCmd())
	return rootCmd
}

func (a *app) load() error {
	var err error
	if a.cfgPath == "" {
		a.cfg, _, err = config.LoadDefault()
	} else {
		a.cfg, err = config.Load(a.cfgPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.logger, err = logging.New(a.cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) ingestCmd() *cobra.Command {
	var dir, failedPath string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Rebuild the index from every document in the corpus directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = a.cfg.Data.PDFDir
			}
			if failedPath == "" {
				failedPath = a.cfg.Data.FailedFiles
			}
			return a.ingest(cmd.Context(), dir, failedPath)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Corpus directory (default from config)")
	cmd.Flags().StringVar(&failedPath, "failed-files", "", "Where to write the failure report (default from config)")
	return cmd
}

func (a *app) ingest(ctx context.Context, dir, failedPath string) error {
	registry := extractor.Default()
	corpus, err := service.LoadCorpus(dir, registry.Extensions())
	if err != nil {
		return err
	}
	if len(corpus) == 0 {
		return fmt.Errorf("no documents found in %s", dir)
	}

	c, err := openComponents(a.cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	ix := service.NewIndexer(registry, buildChunker(a.cfg), c.embedder, c.store, a.cfg.Indexer.BatchSize,
		service.WithLogger(a.logger))
	report, err := ix.Reindex(ctx, corpus)
	if err != nil {
		return err
	}

	if len(report.Failures) > 0 {
		if err := writeFailures(failedPath, report); err != nil {
			return err
		}
		a.logger.Warn("some files failed to process", "count", len(report.Failures), "report", failedPath)
	} else if err := os.Remove(failedPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		// a report left from an earlier run would describe the wrong index
		return fmt.Errorf("remove stale failure report: %w", err)
	}

	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Printf("%s %d chunks stored from %d/%d documents\n",
		ok("Ingestion complete:"), report.ChunksStored, report.DocumentsProcessed, report.DocumentsFound)
	if report.DocumentsFailed > 0 {
		warn := color.New(color.FgYellow).SprintFunc()
		fmt.Println(warn(fmt.Sprintf("%d documents failed, see %s", report.DocumentsFailed, failedPath)))
	}
	return nil
}

func writeFailures(path string, report *domain.IndexReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteFailures(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) queryCmd() *cobra.Command {
	var useTUI, verbose bool
	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Ask questions interactively, or answer a single question",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openComponents(a.cfg)
			if err != nil {
				return err
			}
			defer c.Close()
			p, err := buildPipeline(a.cfg, c, a.logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) > 0 {
				return answerOnce(ctx, p, joinArgs(args), verbose, os.Stdout)
			}
			if useTUI {
				count, err := c.store.Count(ctx)
				if err != nil {
					return err
				}
				m := tui.New(ctx, p, fmt.Sprintf("%d chunks indexed", count))
				_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
				if errors.Is(err, tea.ErrProgramKilled) {
					return nil
				}
				return err
			}
			if !p.GenerationEnabled() {
				warn := color.New(color.FgYellow).SprintFunc()
				fmt.Println(warn("Answer generation is not configured. Set OPENAI_API_KEY or choose a local generator."))
			}
			return repl(ctx, p, os.Stdin, os.Stdout, verbose)
		},
	}
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Use the full-screen interface")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also show the raw search results")
	return cmd
}

func (a *app) generateCmd() *cobra.Command {
	var (
		out         string
		perCategory int
		seed        int64
		blank       bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a labeled test corpus of PDFs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = a.cfg.Data.PDFDir
			}
			paths, err := pdfgen.Generate(out, perCategory, seed)
			if err != nil {
				return err
			}
			for i, p := range paths {
				fmt.Printf("  [%d/%d] Created: %s\n", i+1, len(paths), filepath.Base(p))
			}
			if blank {
				data, err := pdfgen.RenderBlank(1)
				if err != nil {
					return err
				}
				path := filepath.Join(out, "Blank_Scanned_Document.pdf")
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				fmt.Printf("  Created blank: %s\n", filepath.Base(path))
			}
			ok := color.New(color.FgGreen, color.Bold).SprintFunc()
			fmt.Printf("%s %d PDFs in %s\n", ok("Generated"), len(paths), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output directory (default from config)")
	cmd.Flags().IntVar(&perCategory, "per-category", 20, "Documents per category")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for document contents")
	cmd.Flags().BoolVar(&blank, "blank", false, "Also write a PDF without extractable text")
	return cmd
}

func (a *app) evalCmd() *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Measure retrieval quality on the golden query set",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openComponents(a.cfg)
			if err != nil {
				return err
			}
			defer c.Close()
			p, err := buildPipeline(a.cfg, c, a.logger)
			if err != nil {
				return err
			}
			report, err := eval.Evaluate(cmd.Context(), p, eval.Golden, k)
			if err != nil {
				return err
			}
			printEval(os.Stdout, report)
			if !report.Passed() {
				return errors.New("retrieval quality targets not met")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&k, "k", eval.DefaultK, "Number of results checked per query")
	return cmd
}
