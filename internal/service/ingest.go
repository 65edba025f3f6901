package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/batchblast/batchblast/internal/domain/model"
	apperrors "github.com/batchblast/batchblast/internal/errors"
	"github.com/batchblast/batchblast/internal/fasta"
)

// ErrNoSequences is returned when an upload yields no usable records.
var ErrNoSequences = apperrors.Validation("no valid DNA sequences found in the file")

// IngestServiceOptions groups dependencies for IngestService.
type IngestServiceOptions struct {
	Store  *RecordStore // Required
	Logger *slog.Logger // Optional
}

// IngestService loads uploaded sequence files into the record store.
type IngestService struct {
	store  *RecordStore
	logger *slog.Logger
}

// NewIngestService constructs a new IngestService.
func NewIngestService(opts IngestServiceOptions) *IngestService {
	if opts.Store == nil {
		panic("RecordStore is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{store: opts.Store, logger: logger.With("component", "ingest")}
}

// Load parses content and replaces the store with its records, returning the count.
// When nothing usable is found the store is left untouched.
func (s *IngestService) Load(ctx context.Context, content string) (int, error) {
	recs, err := fasta.ParseReader(ctx, strings.NewReader(content))
	if err != nil {
		return 0, fmt.Errorf("parse upload: %w", err)
	}
	return s.apply(ctx, recs)
}

// LoadFile reads the file at path and loads it like Load.
func (s *IngestService) LoadFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	recs, err := fasta.ParseReader(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("parse upload %s: %w", path, err)
	}
	return s.apply(ctx, recs)
}

func (s *IngestService) apply(ctx context.Context, recs []fasta.Record) (int, error) {
	if len(recs) == 0 {
		return 0, ErrNoSequences
	}

	records := make([]model.SequenceRecord, len(recs))
	for i, r := range recs {
		records[i] = model.SequenceRecord{Title: r.Title, Sequence: r.Sequence}
	}
	s.store.ReplaceAll(records)

	s.logger.InfoContext(ctx, "loaded sequences", "count", len(records))
	return len(records), nil
}
