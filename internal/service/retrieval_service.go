package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/noterag/internal/ai"
	"github.com/xxxsen/noterag/internal/embed"
	"github.com/xxxsen/noterag/internal/index"
	"github.com/xxxsen/noterag/internal/model"
	"github.com/xxxsen/noterag/internal/similarity"
)

const (
	DefaultSearchLimit = 10
	DefaultTopK        = 3

	defaultGenerateTimeout = 60 * time.Second

	// Returned whenever the generation provider fails, so the caller
	// always has something renderable.
	answerFailureText = "Sorry, something went wrong while answering your question. Please try again."
)

// Options wires a RetrievalService. Generator is optional; without one
// Answer degrades to the failure response.
type Options struct {
	Vectorizer      *embed.Vectorizer
	Generator       ai.IGenerator
	GenerateTimeout time.Duration
}

// RetrievalService orchestrates the per-request pipeline: embed query,
// rank the owner's index, and for questions build a context payload
// and invoke the generation provider. Every call is stateless; no
// conversation history lives here.
type RetrievalService struct {
	vectorizer *embed.Vectorizer
	indexes    *index.Registry
	generator  ai.IGenerator
	genTimeout time.Duration
}

func NewRetrievalService(opts Options) *RetrievalService {
	timeout := opts.GenerateTimeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &RetrievalService{
		vectorizer: opts.Vectorizer,
		indexes:    index.NewRegistry(opts.Vectorizer.Dimension()),
		generator:  opts.Generator,
		genTimeout: timeout,
	}
}

// SyncNote reacts to a created/updated note: it re-embeds the content
// and upserts the owner's index entry. Unchanged content reuses the
// stored vector so the provider is not called again.
func (s *RetrievalService) SyncNote(ctx context.Context, note model.Note) error {
	if note.ID == "" || note.OwnerID == "" {
		return fmt.Errorf("note id and owner id are required")
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", note.OwnerID), zap.String("note_id", note.ID))
	idx := s.indexes.Owner(note.OwnerID)
	snap := model.SnapshotOf(note)

	if existing, ok := idx.Get(note.ID); ok &&
		existing.Snapshot.Title == note.Title && existing.Snapshot.Body == note.Body {
		return idx.Upsert(note.ID, existing.Embedding, snap)
	}

	emb := s.vectorizer.Embed(ctx, buildEmbedText(note.Title, note.Body), ai.TaskRetrievalDocument)
	if err := idx.Upsert(note.ID, emb, snap); err != nil {
		logger.Error("failed to index note embedding", zap.Error(err))
		return err
	}
	logger.Debug("note embedding synced", zap.String("source", emb.Source))
	return nil
}

// RemoveNote reacts to a deleted note; unknown ids are a no-op.
func (s *RetrievalService) RemoveNote(ownerID, noteID string) {
	s.indexes.Owner(ownerID).Remove(noteID)
}

// DropOwner discards an owner's entire index partition.
func (s *RetrievalService) DropOwner(ownerID string) {
	s.indexes.Drop(ownerID)
}

// IndexSize reports how many notes are currently indexed for an owner.
func (s *RetrievalService) IndexSize(ownerID string) int {
	return s.indexes.Owner(ownerID).Len()
}

// Search embeds the query and ranks the owner's notes by cosine
// similarity. A blank query is a normal UI state (a cleared search
// box) and returns an empty result without touching the Vectorizer.
func (s *RetrievalService) Search(ctx context.Context, ownerID, query string, limit int) []model.RankedResult {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []model.RankedResult{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", ownerID), zap.String("query", trimmed))

	queryEmb := s.vectorizer.Embed(ctx, trimmed, ai.TaskRetrievalQuery)
	entries := s.indexes.Owner(ownerID).All()

	cands := make([]similarity.Candidate, 0, len(entries))
	byID := make(map[string]index.Entry, len(entries))
	for _, entry := range entries {
		byID[entry.NoteID] = entry
		cands = append(cands, similarity.Candidate{
			ID:     entry.NoteID,
			Vector: entry.Embedding.Values,
			Mtime:  entry.Snapshot.Mtime,
		})
	}

	scored := similarity.Rank(cands, queryEmb.Values, similarity.RankOptions{Limit: limit})
	results := make([]model.RankedResult, 0, len(scored))
	for _, hit := range scored {
		results = append(results, model.RankedResult{
			NoteID:   hit.ID,
			Score:    hit.Score,
			Snapshot: byID[hit.ID].Snapshot,
		})
	}
	logger.Debug("semantic search completed", zap.Int("candidates", len(cands)), zap.Int("results", len(results)))
	return results
}

// Answer runs retrieval-augmented generation: search for the topK most
// relevant notes, build a context payload from their snapshots and ask
// the generation provider. Provider failures yield a well-formed
// apology answer, never an error.
func (s *RetrievalService) Answer(ctx context.Context, ownerID, question string, topK int) *model.Answer {
	trimmed := strings.TrimSpace(question)
	if trimmed == "" {
		return &model.Answer{Sources: []model.RankedResult{}}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", ownerID))

	// Even with zero hits the generator is still invoked with an empty
	// context; declining to answer is its call, not ours.
	sources := s.Search(ctx, ownerID, trimmed, topK)

	if s.generator == nil {
		logger.Warn("answer requested but no generator configured")
		return &model.Answer{Text: answerFailureText, Sources: []model.RankedResult{}}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()
	text, err := s.generator.Generate(genCtx, buildAnswerPrompt(trimmed, sources))
	if err != nil {
		logger.Error("generation provider failed", zap.Error(err))
		return &model.Answer{Text: answerFailureText, Sources: []model.RankedResult{}}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Error("generation provider returned empty answer")
		return &model.Answer{Text: answerFailureText, Sources: []model.RankedResult{}}
	}
	logger.Debug("answer generated", zap.Int("sources", len(sources)))
	return &model.Answer{Text: text, Sources: sources}
}

func buildEmbedText(title, body string) string {
	return strings.TrimSpace(title + "\n" + ai.PlainText(body))
}

func buildAnswerPrompt(question string, sources []model.RankedResult) string {
	var ctxParts []string
	for _, src := range sources {
		ctxParts = append(ctxParts, fmt.Sprintf("---\nNote Title: %s\nNote Content: %s\n---", src.Snapshot.Title, src.Snapshot.Body))
	}
	return fmt.Sprintf(`Based ONLY on the following context extracted from user notes, please answer the question.
If the context does not contain the answer, say so.

Context:
%s

Question: %s

Answer:`, strings.Join(ctxParts, "\n"), question)
}
