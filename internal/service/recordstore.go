package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/batchblast/batchblast/internal/domain/model"
)

// RecordStore is the ordered, editable collection of staged sequence records.
//
// Records carry a stable ID assigned at creation, so ID-based operations are
// unaffected by removals elsewhere in the list. Positional operations remain
// for callers that render by index; indices shift down after RemoveAt and must
// not be cached across a removal.
//
// Edits made in an input surface are not seen by the store until reconciled
// with Replace. RemoveAt, ReplaceAll and Clear operate on stored state only, so
// unreconciled edits are lost by them.
type RecordStore struct {
	mu      sync.RWMutex
	records []model.SequenceRecord
}

// NewRecordStore returns an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// Append adds a record at the end. Empty values are accepted; validation happens at submit.
func (s *RecordStore) Append(title, sequence string) model.SequenceRecord {
	rec := model.SequenceRecord{ID: uuid.NewString(), Title: title, Sequence: sequence}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return rec
}

// RemoveAt removes the record at index. Out-of-range indices are ignored.
func (s *RecordStore) RemoveAt(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.records) {
		return
	}
	s.records = append(s.records[:index], s.records[index+1:]...)
}

// Remove deletes the record with the given ID and reports whether it existed.
func (s *RecordStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return true
}

// Replace swaps the whole record with the given ID for new values.
func (s *RecordStore) Replace(id, title, sequence string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.records[i] = model.SequenceRecord{ID: id, Title: title, Sequence: sequence}
	return true
}

// ReplaceAll atomically swaps the collection. Records without an ID are given one.
func (s *RecordStore) ReplaceAll(records []model.SequenceRecord) {
	next := make([]model.SequenceRecord, len(records))
	for i, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		next[i] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = next
}

// Snapshot returns a fresh copy of the records in order.
func (s *RecordStore) Snapshot() []model.SequenceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.SequenceRecord(nil), s.records...)
}

// Len returns the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear removes every record.
func (s *RecordStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
}

func (s *RecordStore) indexOf(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
