package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/noterag/internal/ai"
	"github.com/xxxsen/noterag/internal/config"
	"github.com/xxxsen/noterag/internal/embed"
	"github.com/xxxsen/noterag/internal/model"
	"github.com/xxxsen/noterag/internal/service"
)

func main() {
	var (
		configPath string
		notesPath  string
		ownerID    string
		limit      int
		topK       int
	)

	rootCmd := &cobra.Command{
		Use:   "noterag",
		Short: "semantic retrieval core for notes: search and ask over a notes file",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.PersistentFlags().StringVar(&notesPath, "notes", "", "path to a JSON array of notes")
	rootCmd.PersistentFlags().StringVar(&ownerID, "owner", "default", "owner id whose index partition is used")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "rank notes by semantic similarity to the query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(configPath, notesPath, ownerID)
			if err != nil {
				return err
			}
			results := svc.Search(context.Background(), ownerID, args[0], limit)
			return printJSON(results)
		},
	}
	searchCmd.Flags().IntVar(&limit, "limit", service.DefaultSearchLimit, "maximum number of results")

	askCmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "answer a question from the notes with source citations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup(configPath, notesPath, ownerID)
			if err != nil {
				return err
			}
			answer := svc.Answer(context.Background(), ownerID, args[0], topK)
			return printJSON(answer)
		},
	}
	askCmd.Flags().IntVar(&topK, "top-k", service.DefaultTopK, "number of notes used as answer context")

	rootCmd.AddCommand(searchCmd, askCmd)
	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("command failed", zap.Error(err))
	}
}

func setup(configPath, notesPath, ownerID string) (*service.RetrievalService, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	if notesPath == "" {
		return nil, fmt.Errorf("--notes is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	ctx := context.Background()

	svc, err := buildService(cfg)
	if err != nil {
		return nil, err
	}
	notes, err := loadNotes(notesPath, ownerID)
	if err != nil {
		return nil, err
	}
	for _, note := range notes {
		if err := svc.SyncNote(ctx, note); err != nil {
			return nil, fmt.Errorf("index note %s: %w", note.ID, err)
		}
	}
	logutil.GetLogger(ctx).Info("notes indexed",
		zap.String("owner_id", ownerID),
		zap.Int("count", svc.IndexSize(ownerID)),
	)
	return svc, nil
}

func buildService(cfg *config.Config) (*service.RetrievalService, error) {
	embedEntries := make([]ai.EmbedderEntry, 0, len(cfg.Embedding.Providers))
	for _, p := range cfg.Embedding.Providers {
		provider, err := ai.NewEmbedProvider(p.Provider, p.Args)
		if err != nil {
			return nil, fmt.Errorf("embed provider %s: %w", p.Provider, err)
		}
		embedEntries = append(embedEntries, ai.EmbedderEntry{
			Name:     p.Provider + "/" + p.Model,
			Embedder: ai.NewEmbedder(provider, p.Model),
		})
	}
	embedder := embed.WrapLRUCache(
		ai.NewGroupEmbedder(embedEntries),
		cfg.Embedding.CacheSize,
		time.Duration(cfg.Embedding.CacheTTLMinutes)*time.Minute,
	)

	genEntries := make([]ai.GeneratorEntry, 0, len(cfg.Generation.Providers))
	for _, p := range cfg.Generation.Providers {
		provider, err := ai.NewProvider(p.Provider, p.Args)
		if err != nil {
			return nil, fmt.Errorf("generation provider %s: %w", p.Provider, err)
		}
		genEntries = append(genEntries, ai.GeneratorEntry{
			Name:      p.Provider + "/" + p.Model,
			Generator: ai.NewGenerator(provider, p.Model),
		})
	}

	vectorizer := embed.NewVectorizer(embed.Options{
		Embedder:  embedder,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
	})
	return service.NewRetrievalService(service.Options{
		Vectorizer:      vectorizer,
		Generator:       ai.NewGroupGenerator(genEntries),
		GenerateTimeout: time.Duration(cfg.Generation.TimeoutSeconds) * time.Second,
	}), nil
}

func loadNotes(path, ownerID string) ([]model.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read notes file: %w", err)
	}
	var notes []model.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("decode notes file: %w", err)
	}
	now := time.Now().UnixMilli()
	for i := range notes {
		if notes[i].ID == "" {
			notes[i].ID = uuid.NewString()
		}
		if notes[i].OwnerID == "" {
			notes[i].OwnerID = ownerID
		}
		if notes[i].Mtime == 0 {
			notes[i].Mtime = now
		}
		if notes[i].Ctime == 0 {
			notes[i].Ctime = notes[i].Mtime
		}
	}
	return notes, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
