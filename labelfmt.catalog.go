package labelfmt

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Catalog renders named label templates out of a LabelStorage backend. It
// combines the stored template, its stylesheet and the catalog's base
// options into a ready formatter, caching the built formatter per label
// version.
type Catalog struct {
	storage LabelStorage
	base    []Option
	logger  *zap.Logger

	mu    sync.RWMutex
	cache map[LabelID]*catalogEntry
}

type catalogEntry struct {
	template  string
	formatter *Formatter
}

// NewCatalog creates a catalog over storage. The base options apply to
// every rendered label, below its own stylesheet.
func NewCatalog(storage LabelStorage, base ...Option) *Catalog {
	logger := zap.NewNop()
	config := defaultFormatterConfig()
	for _, opt := range base {
		opt(config)
	}
	if config.logger != nil {
		logger = config.logger
	}
	return &Catalog{
		storage: storage,
		base:    base,
		logger:  logger,
		cache:   make(map[LabelID]*catalogEntry),
	}
}

// Render loads the latest version of the named label and renders it with
// section composition against the given arguments.
func (c *Catalog) Render(ctx context.Context, name string, positional []any, named map[string]any) (string, error) {
	label, err := c.storage.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return c.renderLabel(label, positional, named)
}

// RenderVersion renders a specific version of the named label.
func (c *Catalog) RenderVersion(ctx context.Context, name string, version int, positional []any, named map[string]any) (string, error) {
	label, err := c.storage.GetVersion(ctx, name, version)
	if err != nil {
		return "", err
	}
	return c.renderLabel(label, positional, named)
}

func (c *Catalog) renderLabel(label *StoredLabel, positional []any, named map[string]any) (string, error) {
	entry, err := c.entryFor(label)
	if err != nil {
		return "", err
	}

	out, err := entry.formatter.FormatSections(entry.template, positional, named)
	if err != nil {
		c.logger.Debug(LogMsgTemplateInvalid,
			zap.String(LogFieldName, label.Name),
			zap.Int(LogFieldVersion, label.Version),
			zap.Error(err))
		return "", err
	}
	c.logger.Debug(LogMsgCatalogRender,
		zap.String(LogFieldName, label.Name),
		zap.Int(LogFieldVersion, label.Version))
	return out, nil
}

// entryFor returns the cached formatter for a label version, building it
// on first use.
func (c *Catalog) entryFor(label *StoredLabel) (*catalogEntry, error) {
	c.mu.RLock()
	entry, ok := c.cache[label.ID]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}

	opts := make([]Option, len(c.base))
	copy(opts, c.base)

	if label.Stylesheet != "" {
		sheet, err := ParseStylesheet([]byte(label.Stylesheet))
		if err != nil {
			return nil, err
		}
		sheetOpts, err := sheet.Options()
		if err != nil {
			return nil, err
		}
		opts = append(opts, sheetOpts...)
	}

	entry = &catalogEntry{
		template:  label.Template,
		formatter: New(opts...),
	}

	c.mu.Lock()
	c.cache[label.ID] = entry
	c.mu.Unlock()
	return entry, nil
}

// Invalidate drops every cached formatter, forcing rebuilds on next use.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[LabelID]*catalogEntry)
}
