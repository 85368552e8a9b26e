package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"boost-swap/pkg/swap"
)

const (
	DefaultStorageFileName = ".boost-swap/swaps.json"
)

// ErrNotFound is returned for unknown swap ids
var ErrNotFound = errors.New("swap not found")

// Storage persists swaps in a JSON file
type Storage struct {
	filePath string
	mu       sync.RWMutex
	swaps    map[string]*swap.Swap
}

// SwapStorage represents the JSON structure for storage
type SwapStorage struct {
	Swaps map[string]*swap.Swap `json:"swaps"`
}

// NewStorage creates a new storage instance
func NewStorage(filePath string) (*Storage, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultStorageFileName)
	}

	storage := &Storage{
		filePath: filePath,
		swaps:    make(map[string]*swap.Swap),
	}

	// A missing file is created on first save
	if err := storage.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load swaps: %w", err)
	}

	return storage, nil
}

// load reads swaps from the storage file
func (s *Storage) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var swapStorage SwapStorage
	if err := json.Unmarshal(data, &swapStorage); err != nil {
		return fmt.Errorf("failed to unmarshal swaps: %w", err)
	}

	s.swaps = swapStorage.Swaps
	if s.swaps == nil {
		s.swaps = make(map[string]*swap.Swap)
	}

	return nil
}

// Reload replaces the in-memory swaps with the file contents, picking up
// writes from other processes
func (s *Storage) Reload() error {
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load swaps: %w", err)
	}
	return nil
}

// saveLocked writes swaps to the storage file. The caller holds mu.
func (s *Storage) saveLocked() error {
	data, err := json.MarshalIndent(SwapStorage{Swaps: s.swaps}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal swaps: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write swaps: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Create adds a new swap
func (s *Storage) Create(sw *swap.Swap) error {
	if sw.ID == "" {
		return fmt.Errorf("swap has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.swaps[sw.ID]; exists {
		return fmt.Errorf("swap '%s' already exists", sw.ID)
	}

	s.swaps[sw.ID] = sw.Clone()
	return s.saveLocked()
}

// Get returns a copy of the swap
func (s *Storage) Get(id string) (*swap.Swap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sw, exists := s.swaps[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return sw.Clone(), nil
}

// Apply merges an update into the stored swap, persists it and returns the
// result
func (s *Storage) Apply(id string, u *swap.Update) (*swap.Swap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw, exists := s.swaps[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	previous := sw.Clone()
	sw.Apply(u)
	if err := s.saveLocked(); err != nil {
		s.swaps[id] = previous
		return nil, err
	}

	return sw.Clone(), nil
}

// Delete removes a swap
func (s *Storage) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.swaps[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(s.swaps, id)
	return s.saveLocked()
}

// List returns all swaps, newest first
func (s *Storage) List() []*swap.Swap {
	return s.filter(func(*swap.Swap) bool { return true })
}

// ListPending returns the swaps whose status is not terminal in statuses
func (s *Storage) ListPending(statuses swap.StatusTable) []*swap.Swap {
	return s.filter(func(sw *swap.Swap) bool { return !statuses.IsTerminal(sw.Status) })
}

// ListByFilter returns the swaps whose status maps to the filter status
func (s *Storage) ListByFilter(statuses swap.StatusTable, filter string) []*swap.Swap {
	return s.filter(func(sw *swap.Swap) bool { return statuses[sw.Status].FilterStatus == filter })
}

func (s *Storage) filter(keep func(*swap.Swap) bool) []*swap.Swap {
	s.mu.RLock()
	defer s.mu.RUnlock()

	swaps := make([]*swap.Swap, 0, len(s.swaps))
	for _, sw := range s.swaps {
		if keep(sw) {
			swaps = append(swaps, sw.Clone())
		}
	}

	sort.Slice(swaps, func(i, j int) bool {
		if !swaps[i].StartTime.Equal(swaps[j].StartTime) {
			return swaps[i].StartTime.After(swaps[j].StartTime)
		}
		return swaps[i].ID < swaps[j].ID
	})

	return swaps
}

// Count returns the total number of swaps
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.swaps)
}

// GetFilePath returns the storage file path
func (s *Storage) GetFilePath() string {
	return s.filePath
}
