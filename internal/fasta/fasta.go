// Package fasta reads and writes the multi-record nucleotide text format
// used for uploads and job submissions.
package fasta

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/batchblast/batchblast/internal/domain/model"
)

// Marker begins every record.
const Marker = '>'

// maxLine bounds a single scanned line; unwrapped sequences can be very long.
const maxLine = 64 * 1024 * 1024

// Record is one parsed (title, sequence) pair.
type Record struct {
	Title    string
	Sequence string
}

// Parse splits content into records. Text before the first marker is ignored.
// Sequence characters outside ACGT (either case) are dropped and the result is
// uppercased; records left with no sequence are discarded along with their title.
func Parse(content string) []Record {
	chunks := strings.Split(content, string(Marker))
	if len(chunks) <= 1 {
		return nil
	}

	var out []Record
	for _, chunk := range chunks[1:] {
		header, body, _ := strings.Cut(chunk, "\n")
		if rec, ok := build(header, body); ok {
			out = append(out, rec)
		}
	}
	return out
}

// ParseReader is the streaming variant of Parse for large uploads.
// It returns ctx.Err() if the context is canceled mid-read.
func ParseReader(ctx context.Context, r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		out     []Record
		inRec   bool
		header  string
		seq     strings.Builder
		started bool
	)
	flush := func() {
		if inRec {
			if rec, ok := build(header, seq.String()); ok {
				out = append(out, rec)
			}
		}
		seq.Reset()
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		line := sc.Text()
		// A marker may appear mid-line; honour every occurrence like Parse does.
		for {
			idx := strings.IndexRune(line, Marker)
			if idx < 0 {
				break
			}
			if inRec {
				if !started {
					header += line[:idx]
				} else {
					seq.WriteString(line[:idx])
				}
			}
			flush()
			inRec, started, header = true, false, ""
			line = line[idx+1:]
		}
		if !inRec {
			continue
		}
		if !started {
			header += line
			started = true
			continue
		}
		seq.WriteString(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fasta scan: %w", err)
	}
	flush()
	return out, nil
}

func build(header, body string) (Record, bool) {
	seq := Sanitize(body)
	if seq == "" {
		return Record{}, false
	}
	return Record{Title: strings.TrimSpace(header), Sequence: seq}, true
}

// Sanitize keeps only nucleotide letters and uppercases them.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'A', 'C', 'G', 'T':
			b.WriteRune(r)
		case 'a', 'c', 'g', 't':
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Format encodes entries as marker, title line and one unwrapped sequence line per record.
func Format(entries []model.SubmissionEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteRune(Marker)
		b.WriteString(e.Title)
		b.WriteByte('\n')
		b.WriteString(e.Sequence)
	}
	return b.String()
}
