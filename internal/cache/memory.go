package cache

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

type entry struct {
	id     uint
	member []byte
}

// Memory is an in-process Store with the same ordering rules as the Redis
// one. It backs the service when no Redis address is configured.
type Memory struct {
	mu       sync.RWMutex
	sets     map[string][]entry
	complete map[string]bool
}

func NewMemory() *Memory {
	return &Memory{
		sets:     make(map[string][]entry),
		complete: make(map[string]bool),
	}
}

func (m *Memory) Add(_ context.Context, set string, id uint, value any) error {
	member, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insert(set, id, member)
	return nil
}

func (m *Memory) insert(set string, id uint, member []byte) {
	entries := m.sets[set]
	for _, e := range entries {
		if e.id == id && string(e.member) == string(member) {
			return
		}
	}
	entries = append(entries, entry{id: id, member: member})
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].id != entries[j].id {
			return entries[i].id < entries[j].id
		}
		return string(entries[i].member) < string(entries[j].member)
	})
	m.sets[set] = entries
}

func (m *Memory) Get(_ context.Context, set string, id uint) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.sets[set] {
		if e.id == id {
			return e.member, true, nil
		}
	}
	return nil, false, nil
}

func (m *Memory) Replace(_ context.Context, set string, id uint, value any) error {
	member, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(set, id)
	m.insert(set, id, member)
	return nil
}

func (m *Memory) Remove(_ context.Context, set string, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(set, id)
	return nil
}

func (m *Memory) remove(set string, id uint) {
	entries := m.sets[set][:0]
	for _, e := range m.sets[set] {
		if e.id != id {
			entries = append(entries, e)
		}
	}
	m.sets[set] = entries
}

func (m *Memory) Range(_ context.Context, set string, start, stop int64) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.sets[set]
	n := int64(len(entries))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return [][]byte{}, nil
	}
	out := make([][]byte, 0, stop-start+1)
	for _, e := range entries[start : stop+1] {
		out = append(out, e.member)
	}
	return out, nil
}

func (m *Memory) Count(_ context.Context, set string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.sets[set])), nil
}

func (m *Memory) MarkComplete(_ context.Context, set string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.complete[set] = true
	return nil
}

func (m *Memory) IsComplete(_ context.Context, set string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.complete[set], nil
}

func (m *Memory) Invalidate(_ context.Context, set string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sets, set)
	delete(m.complete, set)
	return nil
}
