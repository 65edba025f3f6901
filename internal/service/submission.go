package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/batchblast/batchblast/internal/domain/model"
	apperrors "github.com/batchblast/batchblast/internal/errors"
	"github.com/batchblast/batchblast/internal/fasta"
)

// ErrNothingToSubmit is returned when validation leaves no entries.
var ErrNothingToSubmit = apperrors.Validation("nothing to submit")

// SubmissionBuilder validates staged records into a payload and retains the
// latest accepted payload as the current result set for preview and downloads.
type SubmissionBuilder struct {
	mu      sync.RWMutex
	current *model.SubmissionPayload
	newID   func() string
}

// NewSubmissionBuilder returns a builder with no current result set.
func NewSubmissionBuilder() *SubmissionBuilder {
	return &SubmissionBuilder{newID: uuid.NewString}
}

// Build validates records and, on success, makes the payload the current result set.
//
// A blank title, or one that would break the wire framing ('>' or a line break),
// rejects the whole submission; every offending 1-based position is reported.
// Sequences keep only nucleotide letters; records left with none are skipped without error.
func (b *SubmissionBuilder) Build(records []model.SequenceRecord) (model.SubmissionPayload, error) {
	var (
		errs    []error
		entries []model.SubmissionEntry
	)
	for i, r := range records {
		title := strings.TrimSpace(r.Title)
		seq := fasta.Sanitize(r.Sequence)
		if err := validateTitle(title, i+1); err != nil {
			errs = append(errs, err)
			continue
		}
		if seq == "" {
			continue
		}
		entries = append(entries, model.SubmissionEntry{Title: title, Sequence: seq})
	}
	if len(errs) > 0 {
		return model.SubmissionPayload{}, errors.Join(errs...)
	}
	if len(entries) == 0 {
		return model.SubmissionPayload{}, ErrNothingToSubmit
	}

	payload := model.SubmissionPayload{JobID: b.newID(), Entries: entries}

	b.mu.Lock()
	defer b.mu.Unlock()
	retained := payload.Clone()
	b.current = &retained
	return payload, nil
}

// Current returns the retained result set, if any.
func (b *SubmissionBuilder) Current() (model.SubmissionPayload, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.current == nil {
		return model.SubmissionPayload{}, false
	}
	return b.current.Clone(), true
}

// Retain makes p the current result set; nil drops it.
func (b *SubmissionBuilder) Retain(p *model.SubmissionPayload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p == nil {
		b.current = nil
		return
	}
	c := p.Clone()
	b.current = &c
}

// Reset drops the retained result set.
func (b *SubmissionBuilder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}

// Encode serializes a payload into the wire submission text.
func Encode(p model.SubmissionPayload) string {
	return fasta.Format(p.Entries)
}

func validateTitle(title string, pos int) error {
	field := fmt.Sprintf("title[%d]", pos)
	switch {
	case title == "":
		return apperrors.ValidationField(field, fmt.Sprintf("title for sequence %d cannot be empty", pos))
	case strings.ContainsAny(title, string(fasta.Marker)+"\r\n"):
		return apperrors.ValidationField(field,
			fmt.Sprintf("title for sequence %d cannot contain %q or line breaks", pos, fasta.Marker))
	default:
		return nil
	}
}
