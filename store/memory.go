package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	nb "github.com/spetersoncode/newsbrief"
)

// Memory is a thread-safe in-memory Store.
type Memory struct {
	mu   sync.RWMutex
	data map[int64]nb.Article
}

var _ Store = (*Memory)(nil)

// NewMemory creates a store holding articles.
func NewMemory(articles ...nb.Article) *Memory {
	m := &Memory{data: make(map[int64]nb.Article, len(articles))}
	for _, a := range articles {
		m.data[a.ID] = a
	}
	return m
}

// Articles returns the articles published in [from, to).
func (m *Memory) Articles(_ context.Context, from, to time.Time) ([]nb.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]nb.Article, 0, len(m.data))
	for _, a := range m.data {
		if inRange(a.PublishedAt, from, to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.Before(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SaveArticles stores articles, replacing any with the same ID.
func (m *Memory) SaveArticles(_ context.Context, articles []nb.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range articles {
		m.data[a.ID] = a
	}
	return nil
}

// SaveAnalysis updates the analysis fields. Nothing is written if any ID is
// unknown.
func (m *Memory) SaveAnalysis(_ context.Context, articles []nb.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range articles {
		if _, ok := m.data[a.ID]; !ok {
			return fmt.Errorf("%w: %d", ErrNotFound, a.ID)
		}
	}
	for _, a := range articles {
		cur := m.data[a.ID]
		cur.Impact, cur.Sectors, cur.Major = a.Impact, a.Sectors, a.Major
		m.data[a.ID] = cur
	}
	return nil
}

// Len returns the number of stored articles.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
