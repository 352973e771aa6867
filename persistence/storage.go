package persistence

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ciscoruiz/coffee-sub002"
	"github.com/ciscoruiz/coffee-sub002/dbms"
)

const (
	MinCacheSize     = 16
	MaxCacheSize     = 4096
	DefaultCacheSize = 128
)

// Counters is a snapshot of the activity of a Storage.
type Counters struct {
	Hits      int64
	Faults    int64
	Evictions int64
}

// Storage caches the most recently used objects of one entity type and
// mediates every load, save, erase and create of them.
//
// Loads of a missing key are single-flight: concurrent callers for the same
// key share one backend call. Every backend call for a key runs under a
// lock of that key, so a load never races a save or erase of the same
// object. A Storage must not be called while the caller holds a guard on the
// connection it passes in.
type Storage struct {
	coffee.OptionalLogger
	name   string
	flight singleflight.Group
	keys   keyLocks

	mu        sync.Mutex // protects the fields below
	cache     *objectsCache
	hits      int64
	faults    int64
	evictions int64
}

// NewStorage clamps maxCacheSize to [MinCacheSize, MaxCacheSize]; zero or a
// negative value selects DefaultCacheSize.
func NewStorage(name string, maxCacheSize int) *Storage {
	switch {
	case maxCacheSize <= 0:
		maxCacheSize = DefaultCacheSize
	case maxCacheSize < MinCacheSize:
		maxCacheSize = MinCacheSize
	case maxCacheSize > MaxCacheSize:
		maxCacheSize = MaxCacheSize
	}
	s := &Storage{
		name:  name,
		cache: newObjectsCache(maxCacheSize),
		keys:  keyLocks{locks: make(map[string]*keyLock)},
	}
	s.LogPrefix = "Storage(" + name + ")"
	return s
}

func (s *Storage) Name() string {
	return s.name
}

func (s *Storage) MaxCacheSize() int {
	return s.cache.maxSize
}

func (s *Storage) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counters{Hits: s.hits, Faults: s.faults, Evictions: s.evictions}
}

func (s *Storage) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.len()
}

// Contains reports whether pk is cached, without counting it as a use.
func (s *Storage) Contains(pk *PrimaryKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.contains(pk)
}

// Keys returns the cached keys from the most to the least recently used.
func (s *Storage) Keys() []*PrimaryKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.cache.keys()
	for i, pk := range keys {
		keys[i] = pk.Clone()
	}
	return keys
}

// Clear drops every cached object. Counters are kept.
func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.clear()
	s.Log("cache cleared")
}

// Load returns the cached object for the loader's key, or runs the loader
// over conn and caches its result.
func (s *Storage) Load(conn *dbms.Connection, loader Loader) (*Object, error) {
	if err := s.check(conn, loader); err != nil {
		return nil, err
	}
	pk := loader.PrimaryKey().Clone()
	if obj, hit := s.lookup(pk); hit {
		return obj, nil
	}

	key := pk.flightKey()
	leader := false
	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		leader = true
		unlock := s.keys.lock(key)
		defer unlock()
		if obj, hit := s.lookup(pk); hit {
			return obj, nil
		}
		s.mu.Lock()
		s.faults++
		s.mu.Unlock()
		s.Log("fault", "key", pk)

		var obj *Object
		err := s.apply(conn, loader, func(gs *dbms.GuardStatement) error {
			var err error
			obj, err = loader.Apply(gs)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", pk, err)
		}
		if err := ownedBy(pk, obj); err != nil {
			return nil, fmt.Errorf("load %s: loader %s: %w", pk, loader.Name(), err)
		}
		s.store(pk, obj)
		return obj, nil
	})
	if err != nil {
		return nil, err
	}
	if !leader {
		s.mu.Lock()
		s.hits++
		s.mu.Unlock()
	}
	return v.(*Object), nil
}

// Save runs the recorder over conn and, on success, caches a copy of the
// recorder's object under its key. A failed save leaves the cache as it was.
func (s *Storage) Save(conn *dbms.Connection, recorder Recorder) error {
	if err := s.check(conn, recorder); err != nil {
		return err
	}
	obj := recorder.Object()
	if obj == nil {
		return coffee.InvalidDataError("save: recorder %s has no object", recorder.Name())
	}
	pk := recorder.PrimaryKey().Clone()
	if err := ownedBy(pk, obj); err != nil {
		return fmt.Errorf("save %s: recorder %s: %w", pk, recorder.Name(), err)
	}
	unlock := s.keys.lock(pk.flightKey())
	defer unlock()

	err := s.apply(conn, recorder, func(gs *dbms.GuardStatement) error {
		return recorder.Apply(gs)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", pk, err)
	}
	s.store(pk, obj.Clone())
	s.Log("saved", "key", pk)
	return nil
}

// Erase runs the eraser over conn and, on success, drops the cached object of
// its key. A failed erase leaves the cache as it was.
func (s *Storage) Erase(conn *dbms.Connection, eraser Eraser) error {
	if err := s.check(conn, eraser); err != nil {
		return err
	}
	pk := eraser.PrimaryKey().Clone()
	unlock := s.keys.lock(pk.flightKey())
	defer unlock()

	err := s.apply(conn, eraser, func(gs *dbms.GuardStatement) error {
		return eraser.Apply(gs)
	})
	if err != nil {
		return fmt.Errorf("erase %s: %w", pk, err)
	}
	s.mu.Lock()
	removed := s.cache.remove(pk)
	s.mu.Unlock()
	s.Log("erased", "key", pk, "cached", removed)
	return nil
}

// Create runs the creator over conn and caches the new object.
func (s *Storage) Create(conn *dbms.Connection, creator Creator) (*Object, error) {
	if err := s.check(conn, creator); err != nil {
		return nil, err
	}
	pk := creator.PrimaryKey().Clone()
	unlock := s.keys.lock(pk.flightKey())
	defer unlock()

	var obj *Object
	err := s.apply(conn, creator, func(gs *dbms.GuardStatement) error {
		var err error
		obj, err = creator.Apply(gs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", pk, err)
	}
	if err := ownedBy(pk, obj); err != nil {
		return nil, fmt.Errorf("create %s: creator %s: %w", pk, creator.Name(), err)
	}
	s.store(pk, obj)
	s.Log("created", "key", pk)
	return obj, nil
}

func (s *Storage) check(conn *dbms.Connection, op Operation) error {
	if conn == nil {
		return coffee.GuardMisuseError("%s: nil connection", s.name)
	}
	if op == nil || op.Statement() == nil || op.PrimaryKey() == nil {
		return coffee.ConfigurationError("%s: accessor needs a statement and a primary key", s.name)
	}
	return nil
}

// ownedBy checks that obj is the object identified by pk, so it can be cached
// under that key.
func ownedBy(pk *PrimaryKey, obj *Object) error {
	if obj == nil {
		return coffee.InvalidDataError("no object")
	}
	if !obj.PrimaryKey().Equals(pk) {
		return coffee.InvalidDataError("object %v does not belong to %v", obj.PrimaryKey(), pk)
	}
	return nil
}

func (s *Storage) lookup(pk *PrimaryKey) (*Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, hit := s.cache.get(pk)
	if hit {
		s.hits++
	}
	return obj, hit
}

func (s *Storage) store(pk *PrimaryKey, obj *Object) {
	s.mu.Lock()
	evicted := s.cache.put(pk, obj)
	if evicted != nil {
		s.evictions++
	}
	s.mu.Unlock()
	if evicted != nil {
		s.Log("evicted", "key", evicted)
	}
}

// apply runs fn under a guard pair over conn and the accessor's statement,
// committing afterwards when the accessor asks for it.
func (s *Storage) apply(conn *dbms.Connection, op Operation, fn func(gs *dbms.GuardStatement) error) error {
	return dbms.WithConnection(conn, func(gc *dbms.GuardConnection) error {
		if err := gc.WithStatement(op.Statement(), fn); err != nil {
			return err
		}
		if op.AutoCommit() {
			return gc.Commit()
		}
		return nil
	})
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// keyLocks hands out one mutex per key, dropping it when nobody holds or
// waits for it.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func (k *keyLocks) lock(key string) (unlock func()) {
	k.mu.Lock()
	l, found := k.locks[key]
	if !found {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
