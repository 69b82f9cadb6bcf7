package match

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/duelsim/duelsim/internal/domain"
	"github.com/duelsim/duelsim/internal/storage"
)

// TranscriptEntry is one recorded match event. A full transcript plus
// the creation seed replays the match exactly.
type TranscriptEntry struct {
	Seq       int             `json:"seq"`
	Topic     string          `json:"topic"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Recorder captures the events a match publishes. Running matches serve
// their transcript from memory; when a match finishes the transcript is
// written to the store as one JSON line per event.
type Recorder struct {
	mu    sync.Mutex
	store storage.Store
	live  map[string][]TranscriptEntry
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(store storage.Store) *Recorder {
	return &Recorder{
		store: store,
		live:  make(map[string][]TranscriptEntry),
	}
}

// Record appends one event to a match's live transcript.
func (r *Recorder) Record(matchID, topic string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding transcript entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.live[matchID]
	r.live[matchID] = append(entries, TranscriptEntry{
		Seq:       len(entries) + 1,
		Topic:     topic,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	})
	return nil
}

// Flush persists a match's transcript and drops the in-memory copy.
func (r *Recorder) Flush(ctx context.Context, matchID string) error {
	r.mu.Lock()
	entries := r.live[matchID]
	delete(r.live, matchID)
	r.mu.Unlock()

	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("encoding transcript for %s: %w", matchID, err)
		}
	}

	if _, err := r.store.Save(ctx, transcriptPath(matchID), &buf); err != nil {
		return fmt.Errorf("saving transcript for %s: %w", matchID, err)
	}
	return nil
}

// Transcript returns a match's events, from memory while the match runs
// and from the store after it finished.
func (r *Recorder) Transcript(ctx context.Context, matchID string) ([]TranscriptEntry, error) {
	r.mu.Lock()
	if entries, ok := r.live[matchID]; ok {
		out := make([]TranscriptEntry, len(entries))
		copy(out, entries)
		r.mu.Unlock()
		return out, nil
	}
	r.mu.Unlock()

	f, err := r.store.Open(ctx, transcriptPath(matchID))
	if err != nil {
		return nil, fmt.Errorf("no transcript for %s: %w", matchID, domain.ErrNotFound)
	}
	defer f.Close()

	var entries []TranscriptEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry TranscriptEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("corrupt transcript for %s: %w", matchID, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript for %s: %w", matchID, err)
	}
	return entries, nil
}

func transcriptPath(matchID string) string {
	return "transcripts/" + matchID + ".jsonl"
}
