package labelfmt

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"
)

// LabelID is a unique identifier for a stored label template version.
type LabelID string

// StoredLabel is a versioned label template with its optional stylesheet.
type StoredLabel struct {
	// ID is the unique identifier for this version.
	ID LabelID `json:"id" yaml:"id"`

	// Name is the template name used for lookups, e.g. "episode.list".
	Name string `json:"name" yaml:"name"`

	// Template is the label template source, section syntax included.
	Template string `json:"template" yaml:"template"`

	// Stylesheet is an optional YAML stylesheet document applied when the
	// label is rendered through a Catalog.
	Stylesheet string `json:"stylesheet,omitempty" yaml:"stylesheet,omitempty"`

	// Version is the version number (1, 2, 3, ...). Higher is newer.
	Version int `json:"version" yaml:"version"`

	// Metadata contains arbitrary key-value pairs for user-defined data.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Tags for categorization and querying.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// CreatedAt is when this version was created.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is when this version was last modified.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// LabelQuery defines filters for listing stored labels.
type LabelQuery struct {
	// NamePrefix filters to names starting with this prefix.
	NamePrefix string

	// NameContains filters to names containing this substring.
	NameContains string

	// Tags filters to labels having ALL specified tags.
	Tags []string

	// Limit is the maximum number of results (0 = no limit).
	Limit int

	// Offset is the number of results to skip (for pagination).
	Offset int

	// IncludeAllVersions includes all versions, not just the latest.
	IncludeAllVersions bool
}

// LabelStorage is the interface for pluggable label-template backends.
// Implementations must be safe for concurrent use.
type LabelStorage interface {
	// Get retrieves the latest version of a label by name.
	Get(ctx context.Context, name string) (*StoredLabel, error)

	// GetVersion retrieves a specific version of a label.
	GetVersion(ctx context.Context, name string, version int) (*StoredLabel, error)

	// Save stores a label. An existing name gets a new version. The ID,
	// Version, CreatedAt and UpdatedAt fields are set by the backend.
	Save(ctx context.Context, label *StoredLabel) error

	// Delete removes all versions of a label by name.
	Delete(ctx context.Context, name string) error

	// DeleteVersion removes a specific version of a label.
	DeleteVersion(ctx context.Context, name string, version int) error

	// List returns labels matching the query, ordered by name then by
	// version descending.
	List(ctx context.Context, query *LabelQuery) ([]*StoredLabel, error)

	// Exists checks if a label with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// ListVersions returns all version numbers for a label, ascending.
	ListVersions(ctx context.Context, name string) ([]int, error)

	// Close releases any resources held by the storage.
	Close() error
}

// StorageDriver is a factory for creating storage instances. Drivers
// register themselves during init().
type StorageDriver interface {
	// Open creates a storage instance from a driver-specific connection
	// string.
	Open(connectionString string) (LabelStorage, error)
}

var (
	storageDriversMu sync.RWMutex
	storageDrivers   = make(map[string]StorageDriver)
)

// RegisterStorageDriver registers a storage driver by name, typically
// from a driver's init(). Panics on nil or duplicate registration.
func RegisterStorageDriver(name string, driver StorageDriver) {
	storageDriversMu.Lock()
	defer storageDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStorageDriver)
	}
	if _, exists := storageDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storageDrivers[name] = driver
}

// OpenStorage opens a storage connection using the named driver.
//
// Example:
//
//	storage, err := labelfmt.OpenStorage("memory", "")
//	storage, err := labelfmt.OpenStorage("filesystem", "/path/to/labels")
func OpenStorage(driverName, connectionString string) (LabelStorage, error) {
	storageDriversMu.RLock()
	driver, ok := storageDrivers[driverName]
	storageDriversMu.RUnlock()

	if !ok {
		return nil, &StorageError{Message: ErrMsgStorageDriverNotFound, Name: driverName}
	}
	return driver.Open(connectionString)
}

// ListStorageDrivers returns the names of all registered storage drivers.
func ListStorageDrivers() []string {
	storageDriversMu.RLock()
	defer storageDriversMu.RUnlock()

	names := make([]string, 0, len(storageDrivers))
	for name := range storageDrivers {
		names = append(names, name)
	}
	return names
}

// Storage error message constants
const (
	ErrMsgNilStorageDriver        = "storage driver is nil"
	ErrMsgDriverAlreadyRegistered = "storage driver already registered"
	ErrMsgStorageDriverNotFound   = "storage driver not found"
	ErrMsgStorageClosed           = "storage is closed"
	ErrMsgLabelNotFound           = "label not found"
	ErrMsgLabelVersionNotFound    = "label version not found"
	ErrMsgLabelNameEmpty          = "label name cannot be empty"
)

// StorageError represents a storage-related error.
type StorageError struct {
	Message string
	Name    string
	Version int
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Name != "" && e.Version > 0 {
		return e.Message + ": " + e.Name + " v" + strconv.Itoa(e.Version)
	}
	if e.Name != "" {
		return e.Message + ": " + e.Name
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error { return e.Cause }

// NewLabelNotFoundError creates an error for a label missing in storage.
func NewLabelNotFoundError(name string) error {
	return &StorageError{Message: ErrMsgLabelNotFound, Name: name}
}

// NewLabelVersionNotFoundError creates an error for a missing version.
func NewLabelVersionNotFoundError(name string, version int) error {
	return &StorageError{Message: ErrMsgLabelVersionNotFound, Name: name, Version: version}
}

// NewStorageClosedError creates an error for operations on closed storage.
func NewStorageClosedError() error {
	return &StorageError{Message: ErrMsgStorageClosed}
}

// IsLabelNotFound reports whether err marks a missing label or version.
func IsLabelNotFound(err error) bool {
	var storageErr *StorageError
	if !errors.As(err, &storageErr) {
		return false
	}
	return storageErr.Message == ErrMsgLabelNotFound || storageErr.Message == ErrMsgLabelVersionNotFound
}
