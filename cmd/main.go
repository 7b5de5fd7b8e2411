package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"termai/internal/config"
	"termai/internal/llmservice"
	"termai/internal/retrieval"
)

const (
	configFilePath = "./configs/config.yaml"
	appName        = "termai"
)

// app carries the state shared by every subcommand. The constructors are
// fields so tests can swap in fakes for the external services.
type app struct {
	out        io.Writer
	configPath string
	debug      bool
	cfg        *config.Config

	newGenerator func(cfg *config.Config) (llmservice.Generator, error)
	newSearcher  func(ctx context.Context, cfg *config.Config) (retrieval.Searcher, func(), error)
}

func main() {
	a := newApp(os.Stdout)
	if err := a.rootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func newApp(out io.Writer) *app {
	return &app{
		out: out,
		newGenerator: func(cfg *config.Config) (llmservice.Generator, error) {
			return llmservice.NewClient(&cfg.LLM)
		},
		newSearcher: openSearcher,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Offline LLM toolkit with retrieval, reasoning, summarization and refinement",
		Long: `termai drives a local text-generation service.
It generates text, answers questions from local documents, reasons step by step,
summarizes large files chunk by chunk and refines existing text.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(a.out)
	root.PersistentFlags().StringVar(&a.configPath, "config", configFilePath, "Path to the YAML config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		a.generateCmd(),
		a.ragCmd(),
		a.reasonCmd(),
		a.summarizeCmd(),
		a.refineCmd(),
		a.indexCmd(),
	)
	return root
}

// setup loads the configuration and configures logging.
func (a *app) setup() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	a.cfg = cfg

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	if a.debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	log.Debug().Interface("config", cfg).Msg("Loaded config")
	return nil
}

func checkEnvironment(cfg *config.Config) {
	log.Info().
		Str("provider", cfg.LLM.Provider).
		Str("base_url", cfg.LLM.BaseURL).
		Str("model", cfg.LLM.Model).
		Str("platform", runtime.GOOS+"/"+runtime.GOARCH).
		Int("cpus", runtime.NumCPU()).
		Msg("Environment check")
}

func (a *app) printBlock(label, text string) {
	fmt.Fprintf(a.out, "\n=== %s ===\n%s\n", label, text)
}
