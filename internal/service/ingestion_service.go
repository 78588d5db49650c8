package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"mcq-bot/internal/domain"
	"mcq-bot/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SegmentFailure is a chunk whose generation call failed after retries.
type SegmentFailure struct {
	ChunkIndex int              `json:"chunk_index"`
	Code       domain.ErrorCode `json:"code"`
	Message    string           `json:"message"`
}

// UploadSummary reports the outcome of one upload, including partial failures.
type UploadSummary struct {
	DocumentID     string                 `json:"document_id"`
	SourceName     string                 `json:"source_name"`
	ChunkCount     int                    `json:"chunk_count"`
	StoredCount    int                    `json:"stored_count"`
	Rejected       []domain.RejectedEntry `json:"rejected"`
	FailedSegments []SegmentFailure       `json:"failed_segments"`
}

// IngestionService runs the document to question pipeline.
type IngestionService interface {
	// UploadDocument extracts text from a file and ingests it. The summary is
	// returned alongside NO_EXTRACTABLE_CONTENT and NO_QUESTIONS_GENERATED.
	UploadDocument(ctx context.Context, ownerID, filename string, data []byte) (*UploadSummary, error)
	UploadText(ctx context.Context, ownerID, sourceName, text string) (*UploadSummary, error)
}

type ingestionService struct {
	extractor      domain.TextExtractor
	chunker        *Chunker
	generator      domain.QuestionGenerator
	parser         domain.QuestionParser
	bank           BankService
	settings       SettingsService
	maxConcurrency int
	logger         *zap.Logger
}

func NewIngestionService(
	extractor domain.TextExtractor,
	chunker *Chunker,
	generator domain.QuestionGenerator,
	parser domain.QuestionParser,
	bank BankService,
	settings SettingsService,
	maxConcurrency int,
	logger *zap.Logger,
) IngestionService {
	return &ingestionService{
		extractor:      extractor,
		chunker:        chunker,
		generator:      generator,
		parser:         parser,
		bank:           bank,
		settings:       settings,
		maxConcurrency: max(maxConcurrency, 1),
		logger:         logger,
	}
}

func (s *ingestionService) UploadDocument(ctx context.Context, ownerID, filename string, data []byte) (*UploadSummary, error) {
	text, err := s.extractor.Extract(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	return s.UploadText(ctx, ownerID, filepath.Base(filename), text)
}

type segmentOutput struct {
	raw string
	err error
}

func (s *ingestionService) UploadText(ctx context.Context, ownerID, sourceName, text string) (*UploadSummary, error) {
	summary := &UploadSummary{
		DocumentID:     util.NewULID(),
		SourceName:     strings.TrimSpace(sourceName),
		Rejected:       []domain.RejectedEntry{},
		FailedSegments: []SegmentFailure{},
	}
	if summary.SourceName == "" {
		summary.SourceName = "pasted text"
	}
	log := s.logger.With(zap.String("owner_id", ownerID), zap.String("document_id", summary.DocumentID))

	segments := s.chunker.Chunk(text)
	summary.ChunkCount = len(segments)
	if len(segments) == 0 {
		return summary, domain.NewError(domain.CodeNoExtractableContent, "the document contains no extractable text", nil)
	}

	settings, err := s.settings.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	outputs := s.generateAll(ctx, segments, settings.MinQuestions, settings.MaxQuestions)

	// parse and persist in source order so the first stored occurrence of a duplicate wins
	seen := make(map[string]struct{})
	for i, out := range outputs {
		chunkLog := log.With(zap.Int("chunk_index", i))
		if out.err != nil {
			chunkLog.Warn("Generation failed for chunk", zap.Error(out.err))
			summary.FailedSegments = append(summary.FailedSegments, segmentFailure(i, out.err))
			continue
		}

		chunk := &domain.KnowledgeChunk{
			ID:               util.NewULID(),
			OwnerID:          ownerID,
			SourceDocumentID: summary.DocumentID,
			SourceName:       summary.SourceName,
			ChunkIndex:       i,
			RawText:          segments[i],
		}
		parsed, rejected := s.parser.Parse(out.raw, chunk)
		summary.Rejected = append(summary.Rejected, rejected...)

		accepted := make([]*domain.Question, 0, len(parsed))
		keys := make(map[string]struct{}, len(parsed))
		for _, q := range parsed {
			key := domain.NormalizeKey(q.Text)
			_, stored := seen[key]
			_, pending := keys[key]
			if stored || pending {
				summary.Rejected = append(summary.Rejected, domain.RejectedEntry{
					ChunkIndex: i,
					Reason:     "duplicate question",
					RawBlock:   q.Text,
				})
				continue
			}
			keys[key] = struct{}{}
			accepted = append(accepted, q)
		}
		if len(accepted) == 0 {
			chunkLog.Info("No valid questions in chunk", zap.Int("rejected", len(rejected)))
			continue
		}

		if err := s.bank.Add(ctx, chunk, accepted); err != nil {
			chunkLog.Error("Failed to store chunk questions", zap.Error(err))
			summary.FailedSegments = append(summary.FailedSegments, segmentFailure(i, err))
			continue
		}
		// only stored questions make later copies duplicates
		for key := range keys {
			seen[key] = struct{}{}
		}
		summary.StoredCount += len(accepted)
		chunkLog.Debug("Stored chunk questions", zap.Int("stored", len(accepted)))
	}

	log.Info("Upload processed",
		zap.String("source_name", summary.SourceName),
		zap.Int("chunks", summary.ChunkCount),
		zap.Int("stored", summary.StoredCount),
		zap.Int("rejected", len(summary.Rejected)),
		zap.Int("failed_segments", len(summary.FailedSegments)))

	if summary.StoredCount == 0 {
		return summary, domain.NewError(domain.CodeNoQuestionsGenerated, "no valid questions could be generated from the document", nil)
	}
	return summary, nil
}

// generateAll calls the generator for every segment with bounded concurrency.
// A failing segment never cancels the others.
func (s *ingestionService) generateAll(ctx context.Context, segments []string, minQ, maxQ int) []segmentOutput {
	outputs := make([]segmentOutput, len(segments))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i, segment := range segments {
		i, segment := i, segment
		g.Go(func() error {
			raw, err := s.generator.Generate(ctx, segment, minQ, maxQ)
			outputs[i] = segmentOutput{raw: raw, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outputs
}

func segmentFailure(index int, err error) SegmentFailure {
	failure := SegmentFailure{ChunkIndex: index, Code: domain.CodeInternal, Message: err.Error()}
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		failure.Code = domainErr.Code
		failure.Message = domainErr.Message
	}
	return failure
}
