// Copyright 2025 The Engram Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/engramdb/engram"
	"github.com/engramdb/engram/ai"
	"github.com/engramdb/engram/core"
	"github.com/engramdb/engram/reindex"
	"github.com/engramdb/engram/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "engram",
		Usage: "Personal semantic engine for free-text thoughts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Usage:   "User id owning the thoughts",
				Value:   "default",
			},
			&cli.StringFlag{
				Name:  "ai-host",
				Usage: "OpenAI-compatible service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.StringFlag{
				Name:  "extractor-model",
				Usage: "Entity extraction model name",
				Value: "qwen2.5:3b",
			},
			&cli.Float64Flag{
				Name:  "min-confidence",
				Usage: "Minimum confidence for extracted entities",
				Value: 0.5,
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Record a new thought and enrich it in the background",
				ArgsUsage: "<content>...",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "wait",
						Usage: "How long to wait for background enrichment before closing",
						Value: 30 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search thoughts (supports type:, after:, before:, \"last week\", \"yesterday\")",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page (1-based)",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Results per page",
						Value: 10,
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Autocomplete suggestions for a prefix",
				ArgsUsage: "<prefix>",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of suggestions",
						Value: 10,
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a thought and its vectors",
				ArgsUsage: "<thought-id>",
				Action:    deleteCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed and re-index all thoughts of a user",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of thoughts to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N thoughts",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*engram.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorModel(c.String("extractor-model")),
		ai.WithMinConfidence(c.Float64("min-confidence")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := engram.NewDatabase(c.String("db"), engram.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func addCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one thought content argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	thoughts, err := pipeline.Ingest(ctx, c.String("user"), c.Args().Slice(), nil)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	for _, thought := range thoughts {
		fmt.Printf("recorded thought %d\n", thought.Id)
	}

	// Enrichment and indexing run on background workers.
	fmt.Fprintf(os.Stderr, "waiting up to %v for enrichment to finish\n", c.Duration("wait"))
	time.Sleep(c.Duration("wait"))

	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pagination := search.Pagination{
		Page:     c.Int("page"),
		PageSize: c.Int("page-size"),
	}

	resp, err := db.Search(context.Background(), strings.Join(c.Args().Slice(), " "), c.String("user"), pagination)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("%d results (page %d, %dms)\n", resp.TotalCount, resp.Page, resp.SearchTimeMs)
	for _, result := range resp.Results {
		fmt.Printf("\n#%d [%.3f] %s\n", result.Rank, result.Score.Final, result.Thought.Timestamp.Format("2006-01-02 15:04"))
		fmt.Printf("  %s\n", result.Thought.Content)
		for _, entry := range result.MatchingEntries {
			fmt.Printf("  - %s: %s (%.2f)\n", entry.EntityType, entry.EntityValue, entry.Confidence)
		}
	}

	return nil
}

func suggestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a prefix argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	suggestions, err := db.Suggest(context.Background(), c.Args().First(), c.String("user"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	for _, s := range suggestions {
		fmt.Println(s)
	}

	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a thought id argument is required")
	}

	var id core.ID
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &id); err != nil {
		return fmt.Errorf("invalid thought id %q: %w", c.Args().First(), err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteThought(context.Background(), id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("deleted thought %d\n", id)
	return nil
}

func reindexCommand(c *cli.Context) error {
	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("ai-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reindexer := db.NewReindexer(config, os.Stderr)
	if err := reindexer.Run(context.Background(), c.String("user")); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
