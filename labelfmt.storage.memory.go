package labelfmt

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage is an in-memory LabelStorage, intended for testing and
// development. All data is lost when the process terminates.
type MemoryStorage struct {
	mu     sync.RWMutex
	labels map[string][]*StoredLabel // name -> versions, newest first
	closed bool
}

// MemoryStorageDriver creates MemoryStorage instances.
type MemoryStorageDriver struct{}

func init() {
	RegisterStorageDriver("memory", &MemoryStorageDriver{})
}

// Open creates a new MemoryStorage. The connection string is ignored.
func (d *MemoryStorageDriver) Open(connectionString string) (LabelStorage, error) {
	return NewMemoryStorage(), nil
}

// NewMemoryStorage creates a new in-memory label storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		labels: make(map[string][]*StoredLabel),
	}
}

// Get retrieves the latest version of a label by name.
func (s *MemoryStorage) Get(ctx context.Context, name string) (*StoredLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions, ok := s.labels[name]
	if !ok || len(versions) == 0 {
		return nil, NewLabelNotFoundError(name)
	}
	return copyStoredLabel(versions[0]), nil
}

// GetVersion retrieves a specific version of a label.
func (s *MemoryStorage) GetVersion(ctx context.Context, name string, version int) (*StoredLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	for _, label := range s.labels[name] {
		if label.Version == version {
			return copyStoredLabel(label), nil
		}
	}
	return nil, NewLabelVersionNotFoundError(name, version)
}

// Save stores a label, creating a new version if one exists.
func (s *MemoryStorage) Save(ctx context.Context, label *StoredLabel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if label.Name == "" {
		return &StorageError{Message: ErrMsgLabelNameEmpty}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	now := time.Now()
	versions := s.labels[label.Name]

	nextVersion := 1
	if len(versions) > 0 {
		nextVersion = versions[0].Version + 1
	}

	stored := &StoredLabel{
		ID:         generateLabelID(),
		Name:       label.Name,
		Template:   label.Template,
		Stylesheet: label.Stylesheet,
		Version:    nextVersion,
		Metadata:   copyStringMap(label.Metadata),
		Tags:       copyStringSlice(label.Tags),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	label.ID = stored.ID
	label.Version = stored.Version
	label.CreatedAt = stored.CreatedAt
	label.UpdatedAt = stored.UpdatedAt

	s.labels[label.Name] = append([]*StoredLabel{stored}, versions...)
	return nil
}

// Delete removes all versions of a label by name.
func (s *MemoryStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	if _, ok := s.labels[name]; !ok {
		return NewLabelNotFoundError(name)
	}
	delete(s.labels, name)
	return nil
}

// DeleteVersion removes a specific version of a label.
func (s *MemoryStorage) DeleteVersion(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	versions, ok := s.labels[name]
	if !ok {
		return NewLabelVersionNotFoundError(name, version)
	}

	for i, label := range versions {
		if label.Version == version {
			s.labels[name] = append(versions[:i], versions[i+1:]...)
			if len(s.labels[name]) == 0 {
				delete(s.labels, name)
			}
			return nil
		}
	}
	return NewLabelVersionNotFoundError(name, version)
}

// List returns labels matching the query.
func (s *MemoryStorage) List(ctx context.Context, query *LabelQuery) ([]*StoredLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	if query == nil {
		query = &LabelQuery{}
	}

	var results []*StoredLabel
	for name, versions := range s.labels {
		if !matchesName(name, query) {
			continue
		}
		if query.IncludeAllVersions {
			for _, label := range versions {
				if matchesTags(label, query) {
					results = append(results, copyStoredLabel(label))
				}
			}
		} else if len(versions) > 0 && matchesTags(versions[0], query) {
			results = append(results, copyStoredLabel(versions[0]))
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].Version > results[j].Version
	})

	if query.Offset > 0 {
		if query.Offset >= len(results) {
			return []*StoredLabel{}, nil
		}
		results = results[query.Offset:]
	}
	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}
	return results, nil
}

// Exists checks if a label with the given name exists.
func (s *MemoryStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}

	versions, ok := s.labels[name]
	return ok && len(versions) > 0, nil
}

// ListVersions returns all version numbers for a label, ascending.
func (s *MemoryStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.labels[name]
	result := make([]int, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		result = append(result, versions[i].Version)
	}
	return result, nil
}

// Close marks the storage as closed.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.labels = nil
	return nil
}

func matchesName(name string, query *LabelQuery) bool {
	if query.NamePrefix != "" && !strings.HasPrefix(name, query.NamePrefix) {
		return false
	}
	if query.NameContains != "" && !strings.Contains(name, query.NameContains) {
		return false
	}
	return true
}

func matchesTags(label *StoredLabel, query *LabelQuery) bool {
	for _, tag := range query.Tags {
		if !containsString(label.Tags, tag) {
			return false
		}
	}
	return true
}

func containsString(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

// generateLabelID generates a unique label ID.
func generateLabelID() LabelID {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return LabelID("lbl_" + base64.RawURLEncoding.EncodeToString(b))
}

// copyStoredLabel creates a deep copy of a StoredLabel.
func copyStoredLabel(label *StoredLabel) *StoredLabel {
	if label == nil {
		return nil
	}
	copied := *label
	copied.Metadata = copyStringMap(label.Metadata)
	copied.Tags = copyStringSlice(label.Tags)
	return &copied
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

func copyStringSlice(s []string) []string {
	if s == nil {
		return nil
	}
	result := make([]string, len(s))
	copy(result, s)
	return result
}
