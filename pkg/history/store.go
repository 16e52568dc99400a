// Package history persists a local record of every bridge transfer the tool
// has run, so past submissions and their hashes survive restarts.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	DefaultFileName = ".tonbridge-history.json"
)

// TransferRecord is one completed or attempted transfer.
type TransferRecord struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	SourceChain    string    `json:"source_chain"`
	Amount         string    `json:"amount"`
	Recipient      string    `json:"recipient"`
	RouteName      string    `json:"route_name"`
	ApprovalTxHash string    `json:"approval_tx_hash,omitempty"`
	TxHash         string    `json:"tx_hash,omitempty"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
}

// Store handles persistence of transfer records
type Store struct {
	filePath string
	mu       sync.RWMutex
	records  []*TransferRecord
}

// fileFormat is the JSON structure on disk
type fileFormat struct {
	Transfers []*TransferRecord `json:"transfers"`
}

// NewStore creates a store backed by filePath, defaulting to a file in the
// user's home directory.
func NewStore(filePath string) (*Store, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultFileName)
	}

	store := &Store{filePath: filePath}

	// Load existing records if file exists
	if err := store.load(); err != nil {
		// If file doesn't exist, that's okay - we'll create it on first save
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
	}

	return store, nil
}

// load reads records from the history file
func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return fmt.Errorf("failed to unmarshal history: %w", err)
	}

	s.records = ff.Transfers
	return nil
}

// save writes records to the history file
func (s *Store) save() error {
	s.mu.RLock()
	ff := fileFormat{Transfers: s.records}
	data, err := json.MarshalIndent(ff, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Append adds a record and persists the file. A record with an empty ID or
// timestamp gets them filled in.
func (s *Store) Append(rec *TransferRecord) error {
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("tx-%d", time.Now().UnixNano())
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()

	return s.save()
}

// UpdateStatus rewrites the status, hash and error of an existing record.
func (s *Store) UpdateStatus(id, status, txHash, errMsg string) error {
	s.mu.Lock()
	found := false
	for _, rec := range s.records {
		if rec.ID == id {
			rec.Status = status
			if txHash != "" {
				rec.TxHash = txHash
			}
			rec.Error = errMsg
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("transfer '%s' not found", id)
	}
	return s.save()
}

// Get retrieves a record by id
func (s *Store) Get(id string) (*TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("transfer '%s' not found", id)
}

// List returns records newest first, limited to n when n > 0.
func (s *Store) List(n int) []*TransferRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*TransferRecord, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Count returns the total number of records
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// FilePath returns the history file path
func (s *Store) FilePath() string {
	return s.filePath
}
