package pseudonym

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// mapperState is the JSON structure the mapper persists between batches.
type mapperState struct {
	Assignments map[string]string `json:"assignments"`
	Updated     string            `json:"updated"`
}

// Mapper is a stateful alternative to the FF1 Pseudonymizer. It derives a
// candidate pseudonym from an HMAC of the original identifier and resolves
// collisions by re-deriving with an attempt counter, remembering every
// assignment in a table. Unlike the stateless cipher it needs a mutex and,
// when configured with a file, durable storage; it exists for deployments
// that must audit the mapping table directly.
type Mapper struct {
	mu          sync.Mutex
	key         []byte
	mappingFile string
	assignments map[string]string
	taken       map[string]bool
}

const mapperMaxAttempts = 64

// NewMapper builds a Mapper, restoring prior assignments from mappingFile
// when it is non-empty and present on disk.
func NewMapper(key []byte, mappingFile string) (*Mapper, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrKeyCorrupt, len(key), KeySize)
	}
	m := &Mapper{
		key:         append([]byte(nil), key...),
		mappingFile: mappingFile,
		assignments: make(map[string]string),
		taken:       make(map[string]bool),
	}
	if mappingFile != "" {
		if err := m.load(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Pseudonymize returns the pseudonym assigned to id, minting one on first
// sight. Assignments are stable across calls and, with a mapping file,
// across runs.
func (m *Mapper) Pseudonymize(id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if anon, ok := m.assignments[id]; ok {
		return anon, nil
	}

	var candidate string
	for attempt := 0; ; attempt++ {
		if attempt == mapperMaxAttempts {
			return "", fmt.Errorf("could not find free pseudonym for identifier after %d attempts", mapperMaxAttempts)
		}
		candidate = m.derive(id, attempt)
		if !m.taken[candidate] {
			break
		}
	}

	m.assignments[id] = candidate
	m.taken[candidate] = true
	if err := m.save(); err != nil {
		return "", err
	}
	return candidate, nil
}

// derive turns an HMAC of the identifier and attempt counter into an
// eight-digit pseudonym, the same shape the cipher path produces for
// typical numeric identifiers.
func (m *Mapper) derive(id string, attempt int) string {
	mac := hmac.New(sha256.New, m.key)
	fmt.Fprintf(mac, "%s|%d", id, attempt)
	sum := mac.Sum(nil)

	var digits [8]byte
	for i := range digits {
		digits[i] = '0' + sum[i]%10
	}
	return string(digits[:])
}

func (m *Mapper) load() error {
	data, err := os.ReadFile(m.mappingFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not read mapping file %s: %w", m.mappingFile, err)
	}

	var state mapperState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("could not parse mapping file %s: %w", m.mappingFile, err)
	}
	for id, anon := range state.Assignments {
		m.assignments[id] = anon
		m.taken[anon] = true
	}
	return nil
}

func (m *Mapper) save() error {
	if m.mappingFile == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(m.mappingFile), 0755); err != nil {
		return fmt.Errorf("could not create mapping directory: %w", err)
	}

	state := mapperState{
		Assignments: m.assignments,
		Updated:     time.Now().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal mapping table: %w", err)
	}
	if err := os.WriteFile(m.mappingFile, data, 0644); err != nil {
		return fmt.Errorf("could not save mapping file: %w", err)
	}
	return nil
}

// Size returns the number of identifiers with assigned pseudonyms.
func (m *Mapper) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assignments)
}
