package storage

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrTableNotFound is returned for unknown table names.
var ErrTableNotFound = errors.New("table not found")

// loadConcurrency bounds the number of files decoded at once by LoadDir.
const loadConcurrency = 4

// Catalog maps case-insensitive table names to tables.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]Table
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]Table)}
}

// Register adds t, replacing any table of the same name.
func (c *Catalog) Register(t Table) {
	c.mu.Lock()
	c.tables[strings.ToLower(t.Name())] = t
	c.mu.Unlock()
}

// Lookup 获取表
func (c *Catalog) Lookup(name string) (Table, error) {
	c.mu.RLock()
	t, ok := c.tables[strings.ToLower(name)]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrTableNotFound, "table %s", name)
	}
	return t, nil
}

// Drop removes a table and reports whether it existed.
func (c *Catalog) Drop(name string) bool {
	key := strings.ToLower(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tables[key]; !ok {
		return false
	}
	delete(c.tables, key)
	return true
}

// Names returns the registered table names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.tables))
	for _, t := range c.tables {
		names = append(names, t.Name())
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// LoadDir loads every *.json table file of dir concurrently and registers
// them. Nothing is registered when any file fails.
func (c *Catalog) LoadDir(ctx context.Context, dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", dir)
	}
	sort.Strings(paths)

	tables := make([]*JSONTable, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := LoadJSONTable(path)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "load tables from %s", dir)
	}

	names := make([]string, len(tables))
	for i, t := range tables {
		c.Register(t)
		names[i] = t.Name()
	}
	return names, nil
}
