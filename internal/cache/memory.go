package cache

import (
	"context"
	"sync"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/domain"
)

// MemoryView is a process-local CartView for development and tests.
type MemoryView struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryView() *MemoryView {
	return &MemoryView{
		carts: make(map[string]*domain.Cart),
	}
}

func (m *MemoryView) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cart, ok := m.carts[userID]
	if !ok {
		return nil, ErrCacheMiss
	}
	return cart, nil
}

func (m *MemoryView) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.carts[userID] = cart
	return nil
}

func (m *MemoryView) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, userID)
	return nil
}
