package labelfmt

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FilesystemStorage stores label templates as YAML files, one file per
// version:
//
//	<root>/
//	  <label-name>/
//	    v1.yaml
//	    v2.yaml
//	    ...
type FilesystemStorage struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

const (
	filesystemVersionPrefix = "v"
	filesystemVersionSuffix = ".yaml"
	filesystemDirPerm       = 0o755
	filesystemFilePerm      = 0o644
)

// FilesystemStorageDriver creates FilesystemStorage instances.
type FilesystemStorageDriver struct{}

func init() {
	RegisterStorageDriver("filesystem", &FilesystemStorageDriver{})
}

// Open creates a FilesystemStorage rooted at the connection string path.
func (d *FilesystemStorageDriver) Open(connectionString string) (LabelStorage, error) {
	return NewFilesystemStorage(connectionString)
}

// NewFilesystemStorage creates a filesystem-based label storage. The root
// directory is created if it does not exist.
func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot}
	}
	if err := os.MkdirAll(root, filesystemDirPerm); err != nil {
		return nil, &StorageError{Message: ErrMsgCreateStorageDir, Name: root, Cause: err}
	}
	return &FilesystemStorage{root: root}, nil
}

// Get retrieves the latest version of a label by name.
func (s *FilesystemStorage) Get(ctx context.Context, name string) (*StoredLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateLabelNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions, err := s.listVersionsInternal(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewLabelNotFoundError(name)
	}
	return s.loadLabel(name, versions[len(versions)-1])
}

// GetVersion retrieves a specific version of a label.
func (s *FilesystemStorage) GetVersion(ctx context.Context, name string, version int) (*StoredLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateLabelNameForFilesystem(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	return s.loadLabel(name, version)
}

// Save stores a label, creating a new version if one exists.
func (s *FilesystemStorage) Save(ctx context.Context, label *StoredLabel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateLabelNameForFilesystem(label.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	labelDir := filepath.Join(s.root, label.Name)
	if err := os.MkdirAll(labelDir, filesystemDirPerm); err != nil {
		return &StorageError{Message: ErrMsgCreateStorageDir, Name: labelDir, Cause: err}
	}

	versions, _ := s.listVersionsInternal(label.Name)
	nextVersion := 1
	if len(versions) > 0 {
		nextVersion = versions[len(versions)-1] + 1
	}

	now := time.Now()
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

	data, err := yaml.Marshal(stored)
	if err != nil {
		return &StorageError{Message: ErrMsgMarshalLabel, Name: label.Name, Cause: err}
	}
	filename := s.versionFile(label.Name, nextVersion)
	if err := os.WriteFile(filename, data, filesystemFilePerm); err != nil {
		return &StorageError{Message: ErrMsgWriteLabel, Name: filename, Cause: err}
	}

	label.ID = stored.ID
	label.Version = stored.Version
	label.CreatedAt = stored.CreatedAt
	label.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes all versions of a label by name.
func (s *FilesystemStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateLabelNameForFilesystem(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	labelDir := filepath.Join(s.root, name)
	if _, err := os.Stat(labelDir); os.IsNotExist(err) {
		return NewLabelNotFoundError(name)
	}
	if err := os.RemoveAll(labelDir); err != nil {
		return &StorageError{Message: ErrMsgDeleteLabel, Name: name, Cause: err}
	}
	return nil
}

// DeleteVersion removes a specific version of a label.
func (s *FilesystemStorage) DeleteVersion(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateLabelNameForFilesystem(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	filename := s.versionFile(name, version)
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return NewLabelVersionNotFoundError(name, version)
	}
	if err := os.Remove(filename); err != nil {
		return &StorageError{Message: ErrMsgDeleteLabel, Name: filename, Cause: err}
	}

	// remove the directory once the last version is gone
	labelDir := filepath.Join(s.root, name)
	if remaining, err := s.listVersionsInternal(name); err == nil && len(remaining) == 0 {
		_ = os.RemoveAll(labelDir)
	}
	return nil
}

// List returns labels matching the query.
func (s *FilesystemStorage) List(ctx context.Context, query *LabelQuery) ([]*StoredLabel, error) {
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

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Cause: err}
	}

	var results []*StoredLabel
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !matchesName(name, query) {
			continue
		}

		versions, err := s.listVersionsInternal(name)
		if err != nil || len(versions) == 0 {
			continue
		}

		if query.IncludeAllVersions {
			for _, version := range versions {
				label, err := s.loadLabel(name, version)
				if err != nil {
					continue
				}
				if matchesTags(label, query) {
					results = append(results, label)
				}
			}
		} else {
			label, err := s.loadLabel(name, versions[len(versions)-1])
			if err != nil {
				continue
			}
			if matchesTags(label, query) {
				results = append(results, label)
			}
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
func (s *FilesystemStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}

	versions, err := s.listVersionsInternal(name)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// ListVersions returns all version numbers for a label, ascending.
func (s *FilesystemStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	return s.listVersionsInternal(name)
}

// Close marks the storage as closed.
func (s *FilesystemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *FilesystemStorage) versionFile(name string, version int) string {
	return filepath.Join(s.root, name, filesystemVersionPrefix+strconv.Itoa(version)+filesystemVersionSuffix)
}

// listVersionsInternal lists version numbers ascending (no locking).
func (s *FilesystemStorage) listVersionsInternal(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return []int{}, nil
		}
		return nil, err
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		filename := entry.Name()
		if !strings.HasPrefix(filename, filesystemVersionPrefix) || !strings.HasSuffix(filename, filesystemVersionSuffix) {
			continue
		}
		versionStr := filename[len(filesystemVersionPrefix) : len(filename)-len(filesystemVersionSuffix)]
		if version, err := strconv.Atoi(versionStr); err == nil && version > 0 {
			versions = append(versions, version)
		}
	}
	sort.Ints(versions)
	return versions, nil
}

// loadLabel loads a label version from disk.
func (s *FilesystemStorage) loadLabel(name string, version int) (*StoredLabel, error) {
	data, err := os.ReadFile(s.versionFile(name, version))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLabelVersionNotFoundError(name, version)
		}
		return nil, &StorageError{Message: ErrMsgReadLabel, Name: name, Cause: err}
	}

	var label StoredLabel
	if err := yaml.Unmarshal(data, &label); err != nil {
		return nil, &StorageError{Message: ErrMsgUnmarshalLabel, Name: name, Cause: err}
	}
	return &label, nil
}

// Filesystem storage error messages
const (
	ErrMsgInvalidStorageRoot    = "invalid storage root path"
	ErrMsgCreateStorageDir      = "failed to create storage directory"
	ErrMsgReadStorageDir        = "failed to read storage directory"
	ErrMsgMarshalLabel          = "failed to marshal label"
	ErrMsgUnmarshalLabel        = "failed to unmarshal label"
	ErrMsgWriteLabel            = "failed to write label file"
	ErrMsgReadLabel             = "failed to read label file"
	ErrMsgDeleteLabel           = "failed to delete label"
	ErrMsgPathTraversalDetected = "path traversal detected in label name"
	ErrMsgLabelNameInvalid      = "label name contains invalid characters"
)

// validateLabelNameForFilesystem rejects names unsafe as directory names.
func validateLabelNameForFilesystem(name string) error {
	if name == "" {
		return &StorageError{Message: ErrMsgLabelNameEmpty}
	}
	if strings.Contains(name, "..") {
		return &StorageError{Message: ErrMsgPathTraversalDetected, Name: name}
	}
	if strings.ContainsAny(name, "/\\:*?\"<>|") {
		return &StorageError{Message: ErrMsgLabelNameInvalid, Name: name}
	}
	return nil
}
