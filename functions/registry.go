package functions

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/immutable"
)

type snapshot = immutable.SortedMap[string, *FunctionDef]

// Registry 函数注册器
//
// Readers load the current snapshot without locking. Writers serialize on
// mu, derive a new persistent map from the current one and publish it with
// a single pointer store, so a lookup observes either the complete old or
// the complete new definition.
type Registry struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.current.Store(immutable.NewSortedMap[string, *FunctionDef](nil))
	return r
}

func (r *Registry) load() *snapshot {
	return r.current.Load()
}

// Define inserts def or replaces the definition of the same name.
// replaced reports whether an older definition was discarded.
func (r *Registry) Define(def *FunctionDef) (replaced bool, err error) {
	if err := def.validate(); err != nil {
		return false, err
	}
	key := NormalizeName(def.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.load()
	_, replaced = cur.Get(key)
	r.current.Store(cur.Set(key, def))
	return replaced, nil
}

// Lookup 获取函数
func (r *Registry) Lookup(name string) (*FunctionDef, bool) {
	return r.load().Get(NormalizeName(name))
}

// Drop 注销函数
func (r *Registry) Drop(name string) bool {
	key := NormalizeName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.load()
	if _, ok := cur.Get(key); !ok {
		return false
	}
	r.current.Store(cur.Delete(key))
	return true
}

// List returns every definition ordered by name.
func (r *Registry) List() []*FunctionDef {
	snap := r.load()
	out := make([]*FunctionDef, 0, snap.Len())
	itr := snap.Iterator()
	for !itr.Done() {
		_, def, _ := itr.Next()
		out = append(out, def)
	}
	return out
}

// ListByType 按类型获取函数列表
func (r *Registry) ListByType(t FunctionType) []*FunctionDef {
	var out []*FunctionDef
	for _, def := range r.List() {
		if def.Type == t {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return r.load().Len()
}
