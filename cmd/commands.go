package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"termai/internal/config"
	"termai/internal/helper"
	"termai/internal/llmservice"
	"termai/internal/models"
	"termai/internal/rag"
	"termai/internal/reasoning"
	"termai/internal/refine"
	"termai/internal/retrieval"
	"termai/internal/summarize"
)

// generator loads the config, runs the environment check and builds the
// completion client shared by the pipelines of one command.
func (a *app) generator() (llmservice.Generator, error) {
	if err := a.setup(); err != nil {
		return nil, err
	}
	checkEnvironment(a.cfg)

	gen, err := a.newGenerator(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("error initializing completion service: %w", err)
	}
	return gen, nil
}

func (a *app) generateCmd() *cobra.Command {
	var (
		prompt    string
		maxLength int
		refineOut bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate text from a local LLM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := a.generator()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max_length") {
				maxLength = a.cfg.Limits.Generate
			}

			ctx := cmd.Context()
			output, err := gen.Generate(ctx, prompt, maxLength)
			if err != nil {
				return err
			}
			a.printBlock("GENERATED TEXT", output)

			if refineOut {
				refined, err := refine.New(gen, a.cfg.Limits.Refine).Refine(ctx, output, models.DefaultRefineInstructions)
				if err != nil {
					return err
				}
				a.printBlock("REFINED TEXT", refined)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "Prompt for text generation")
	cmd.Flags().IntVar(&maxLength, "max_length", 100, "Maximum tokens in output")
	cmd.Flags().BoolVar(&refineOut, "refine", false, "Run a refinement pass after generation")
	_ = cmd.MarkFlagRequired("prompt")
	return cmd
}

func (a *app) ragCmd() *cobra.Command {
	var question string
	cmd := &cobra.Command{
		Use:   "rag",
		Short: "Question-answering with retrieval-augmented generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := a.generator()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			searcher, closeFn, err := a.newSearcher(ctx, a.cfg)
			if err != nil {
				return fmt.Errorf("error initializing retrieval: %w", err)
			}
			defer closeFn()

			pipeline := rag.NewRAG(searcher, gen, rag.Options{
				TopK:      a.cfg.RAG.TopK,
				MaxLength: a.cfg.Limits.RAGAnswer,
			})
			answer, err := pipeline.Answer(ctx, question)
			if err != nil {
				return err
			}
			a.printBlock("RAG ANSWER", answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&question, "question", "", "Question to be answered using local docs")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

func (a *app) reasonCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "reason",
		Short: "Multi-step chain-of-thought reasoning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := a.generator()
			if err != nil {
				return err
			}
			reasoner := reasoning.New(gen, reasoning.Options{
				ReasoningMaxLength: a.cfg.Limits.Reasoning,
				AnswerMaxLength:    a.cfg.Limits.FinalAnswer,
			})
			answer, err := reasoner.Reason(cmd.Context(), query)
			if err != nil {
				return err
			}
			a.printBlock("REASONED ANSWER", answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Complex query to reason about")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) summarizeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Chunk-based summarization of a text file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := a.generator()
			if err != nil {
				return err
			}
			summarizer := summarize.New(gen, summarize.Options{
				ChunkSize:        a.cfg.Summarize.ChunkSize,
				ChunkMaxLength:   a.cfg.Limits.ChunkSummary,
				CombineMaxLength: a.cfg.Limits.CombineSummaries,
				Concurrency:      a.cfg.Summarize.Concurrency,
			})
			summary, err := summarizer.Summarize(cmd.Context(), file)
			if err != nil {
				return err
			}
			a.printBlock("SUMMARY", summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the text file to summarize")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) refineCmd() *cobra.Command {
	var text, instructions string
	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Refine or improve an existing text snippet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := a.generator()
			if err != nil {
				return err
			}
			improved, err := refine.New(gen, a.cfg.Limits.Refine).Refine(cmd.Context(), text, instructions)
			if err != nil {
				return err
			}
			a.printBlock("REFINED TEXT", improved)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "The text to refine")
	cmd.Flags().StringVar(&instructions, "instructions", "", "Refinement instructions")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("instructions")
	return cmd
}

func (a *app) indexCmd() *cobra.Command {
	var (
		dir        string
		dryRun     bool
		exportPath string
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the retrieval index from the local document directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			if dir == "" {
				dir = a.cfg.RAG.DataDir
			}
			ctx := cmd.Context()

			if dryRun {
				passages, err := retrieval.NewIndexer(nil, a.cfg.RAG.ChunkSize, a.cfg.RAG.ChunkOverlap).LoadDir(ctx, dir)
				if err != nil {
					return err
				}
				helper.PrettyPrint(a.out, passages)
				return nil
			}
			return a.rebuildIndex(ctx, dir, exportPath)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Document directory (defaults to rag.data_dir)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the parsed passages without storing them")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write a chromem snapshot of the index to this file")
	return cmd
}

func (a *app) rebuildIndex(ctx context.Context, dir, exportPath string) error {
	if a.cfg.RAG.Backend == config.BackendChromem && a.cfg.RAG.DBPath == "" && exportPath == "" {
		log.Warn().Msg("rag.db_path is empty, the index only lives for this run")
	}
	store, closeFn, err := openStore(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("error opening vector store: %w", err)
	}
	defer closeFn()

	n, err := retrieval.NewIndexer(store, a.cfg.RAG.ChunkSize, a.cfg.RAG.ChunkOverlap).Rebuild(ctx, dir)
	if err != nil {
		return fmt.Errorf("error indexing %s: %w", dir, err)
	}

	if exportPath != "" {
		exporter, ok := store.(interface{ Export(string) error })
		if !ok {
			return fmt.Errorf("export is only supported by the %s backend", config.BackendChromem)
		}
		if err := exporter.Export(exportPath); err != nil {
			return err
		}
		log.Info().Str("file", exportPath).Msg("Exported index")
	}

	a.printBlock("INDEX", fmt.Sprintf("Indexed %d passage(s) from %s", n, dir))
	return nil
}
