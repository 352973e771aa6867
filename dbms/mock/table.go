package mock

import (
	"fmt"
	"sync"
)

// Table is a keyed in-memory relation whose methods are ready made handlers.
// A row is a slice of Go values; its first keyColumns values form the key.
type Table struct {
	mu         sync.Mutex
	keyColumns int
	rows       map[string][]any
}

func NewTable(keyColumns int) *Table {
	return &Table{keyColumns: keyColumns, rows: make(map[string][]any)}
}

func (t *Table) Put(row ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[t.key(row)] = row
}

// Get returns the row stored under key.
func (t *Table) Get(key ...any) ([]any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, found := t.rows[t.key(key)]
	return row, found
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Select takes the key and answers the non key columns of the matching row.
// A missing row is an empty, successful result.
func (t *Table) Select(inputs []any) ([][]any, int) {
	row, found := t.Get(inputs[:t.keyColumns]...)
	if !found {
		return nil, Success
	}
	return [][]any{row[t.keyColumns:]}, Success
}

// Insert takes a whole row and fails if the key already exists.
func (t *Table) Insert(inputs []any) ([][]any, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := t.key(inputs)
	if _, found := t.rows[k]; found {
		return nil, Failure
	}
	t.rows[k] = inputs
	return nil, Success
}

// Update takes a whole row and fails with NotFound if the key is missing.
func (t *Table) Update(inputs []any) ([][]any, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := t.key(inputs)
	if _, found := t.rows[k]; !found {
		return nil, NotFound
	}
	t.rows[k] = inputs
	return nil, Success
}

// Upsert takes a whole row and stores it.
func (t *Table) Upsert(inputs []any) ([][]any, int) {
	t.Put(inputs...)
	return nil, Success
}

// Delete takes the key and fails with NotFound if it is missing.
func (t *Table) Delete(inputs []any) ([][]any, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := t.key(inputs)
	if _, found := t.rows[k]; !found {
		return nil, NotFound
	}
	delete(t.rows, k)
	return nil, Success
}

func (t *Table) key(values []any) string {
	return fmt.Sprintf("%#v", values[:t.keyColumns])
}
