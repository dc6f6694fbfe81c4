package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
)

// DefaultSnapshotKey is the snapshot key used for the order collection
const DefaultSnapshotKey = "orders"

// OrderStore is an in-memory order collection persisted as a single snapshot
// after every mutation. It implements core.OrderRepository.
type OrderStore struct {
	mu        sync.RWMutex
	orders    []*core.Order
	byID      map[string]int
	numbers   map[string]struct{}
	snapshots core.SnapshotStore
	key       string
	now       func() time.Time
}

// NewOrderStore creates an empty store backed by snapshots
func NewOrderStore(snapshots core.SnapshotStore, key string) *OrderStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &OrderStore{
		byID:      make(map[string]int),
		numbers:   make(map[string]struct{}),
		snapshots: snapshots,
		key:       key,
		now:       time.Now,
	}
}

// Load replaces the in-memory state with the persisted snapshot. A missing
// snapshot leaves the store empty.
func (s *OrderStore) Load(ctx context.Context) error {
	data, err := s.snapshots.Load(ctx, s.key)
	if errors.Is(err, core.ErrSnapshotNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load order snapshot: %w", err)
	}

	var orders []*core.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return fmt.Errorf("failed to decode order snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(orders)
	return nil
}

// Seed populates an empty store and persists it. A non-empty store is left untouched.
func (s *OrderStore) Seed(ctx context.Context, orders []*core.Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.orders) > 0 {
		return false, nil
	}

	cloned := make([]*core.Order, len(orders))
	for i, order := range orders {
		cloned[i] = cloneOrder(order)
	}
	s.reset(cloned)

	if err := s.persist(ctx); err != nil {
		s.reset(nil)
		return false, err
	}
	return true, nil
}

// Len returns the number of stored orders
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

// All returns a copy of every order in insertion order
func (s *OrderStore) All() []*core.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Order, len(s.orders))
	for i, order := range s.orders {
		out[i] = cloneOrder(order)
	}
	return out
}

// CreateOrder appends an order and persists the snapshot
func (s *OrderStore) CreateOrder(ctx context.Context, order *core.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[order.ID]; exists {
		return fmt.Errorf("order %s already exists", order.ID)
	}
	if _, exists := s.numbers[order.OrderNumber]; exists {
		return core.ErrDuplicateOrderNumber
	}

	s.orders = append(s.orders, cloneOrder(order))
	s.index(len(s.orders) - 1)

	if err := s.persist(ctx); err != nil {
		s.orders = s.orders[:len(s.orders)-1]
		delete(s.byID, order.ID)
		delete(s.numbers, order.OrderNumber)
		return err
	}
	return nil
}

// GetByID retrieves a copy of an order
func (s *OrderStore) GetByID(ctx context.Context, id string) (*core.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, core.ErrOrderNotFound
	}
	return cloneOrder(s.orders[i]), nil
}

// GetAll returns orders newest first, optionally filtered by status
func (s *OrderStore) GetAll(ctx context.Context, status core.OrderStatus) ([]*core.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if status != "" && order.Status != status {
			continue
		}
		out = append(out, cloneOrder(order))
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})
	return out, nil
}

// GetByDateRange returns orders created within [start, end] in insertion order
func (s *OrderStore) GetByDateRange(ctx context.Context, start, end time.Time) ([]*core.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := core.DateRange{Start: start, End: end}
	out := make([]*core.Order, 0)
	for _, order := range s.orders {
		if r.Contains(order.CreatedAt) {
			out = append(out, cloneOrder(order))
		}
	}
	return out, nil
}

// UpdateStatus sets the status of an order. Any valid status may follow any other.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status core.OrderStatus) error {
	if !status.Valid() {
		return core.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return core.ErrOrderNotFound
	}

	order := s.orders[i]
	prevStatus, prevUpdated := order.Status, order.UpdatedAt
	order.Status = status
	order.UpdatedAt = s.now()

	if err := s.persist(ctx); err != nil {
		order.Status, order.UpdatedAt = prevStatus, prevUpdated
		return err
	}
	return nil
}

func (s *OrderStore) reset(orders []*core.Order) {
	s.orders = orders
	s.byID = make(map[string]int, len(orders))
	s.numbers = make(map[string]struct{}, len(orders))
	for i := range orders {
		s.index(i)
	}
}

func (s *OrderStore) index(i int) {
	s.byID[s.orders[i].ID] = i
	s.numbers[s.orders[i].OrderNumber] = struct{}{}
}

// persist must be called with the write lock held
func (s *OrderStore) persist(ctx context.Context) error {
	data, err := json.Marshal(s.orders)
	if err != nil {
		return fmt.Errorf("failed to encode order snapshot: %w", err)
	}
	if err := s.snapshots.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save order snapshot: %w", err)
	}
	return nil
}

func cloneOrder(order *core.Order) *core.Order {
	c := *order
	c.Items = append([]core.OrderItem(nil), order.Items...)
	return &c
}
