package events

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petfood-ae/storefront/internal/core"
	"github.com/petfood-ae/storefront/internal/logger"
	"github.com/shopspring/decimal"
)

// EventType names a dashboard event stream
type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventStockUpdated       EventType = "stock_updated"
	EventPriceUpdated       EventType = "price_updated"
)

// subscriberBuffer is how many events a slow dashboard may lag behind
const subscriberBuffer = 10

// OrderCreated is the payload of EventOrderCreated
type OrderCreated struct {
	OrderID     string           `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	Customer    string           `json:"customer"`
	Emirate     string           `json:"emirate"`
	Items       int              `json:"items"`
	Total       decimal.Decimal  `json:"total"`
	Status      core.OrderStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// OrderStatusChange is the payload of EventOrderStatusChanged
type OrderStatusChange struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

// StockChange is the payload of EventStockUpdated
type StockChange struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Stock     int    `json:"stock"`
}

// PriceChange is the payload of EventPriceUpdated
type PriceChange struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
}

// Event is one message on the admin stream. Seq increases monotonically
// per bus and is sent as the SSE id so a client can spot gaps.
type Event struct {
	Seq  uint64
	Type EventType
	Data any
}

type subscriber struct {
	ch      chan Event
	dropped atomic.Uint64
}

// EventBus fans events out to dashboard streams. Publishing never blocks;
// a subscriber whose buffer is full misses the event.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	seq         atomic.Uint64
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string]*subscriber)}
}

// Subscribe registers id until ctx is done. The returned channel is closed
// on unsubscribe.
func (eb *EventBus) Subscribe(ctx context.Context, id string) <-chan Event {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	eb.mu.Lock()
	if prev, ok := eb.subscribers[id]; ok {
		close(prev.ch)
	}
	eb.subscribers[id] = sub
	eb.mu.Unlock()

	go func() {
		<-ctx.Done()
		eb.unsubscribe(id, sub)
	}()

	return sub.ch
}

func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	sub, ok := eb.subscribers[id]
	eb.mu.Unlock()
	if ok {
		eb.unsubscribe(id, sub)
	}
}

// unsubscribe only removes sub if it is still the registration for id, so a
// stale context cannot close a newer stream that reused the id.
func (eb *EventBus) unsubscribe(id string, sub *subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if current, ok := eb.subscribers[id]; !ok || current != sub {
		return
	}
	delete(eb.subscribers, id)
	close(sub.ch)

	if n := sub.dropped.Load(); n > 0 {
		logger.Log.Warn().Str("subscriber", id).Uint64("dropped", n).Msg("event stream closed with dropped events")
	}
}

func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Publish stamps the next sequence number and offers the event to every
// subscriber.
func (eb *EventBus) Publish(eventType EventType, data any) Event {
	event := Event{Seq: eb.seq.Add(1), Type: eventType, Data: data}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, sub := range eb.subscribers {
		select {
		case sub.ch <- event:
		default:
			sub.dropped.Add(1)
		}
	}
	return event
}

func (eb *EventBus) PublishOrderCreated(order *core.Order) {
	eb.Publish(EventOrderCreated, OrderCreated{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Customer:    order.Customer.FullName(),
		Emirate:     order.DeliveryAddress.Emirate,
		Items:       order.ItemCount(),
		Total:       order.Total,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
	})
}

func (eb *EventBus) PublishOrderStatusChanged(orderID, orderNumber, status string) {
	eb.Publish(EventOrderStatusChanged, OrderStatusChange{OrderID: orderID, OrderNumber: orderNumber, Status: status})
}

func (eb *EventBus) PublishStockUpdated(productID, sku string, stock int) {
	eb.Publish(EventStockUpdated, StockChange{ProductID: productID, SKU: sku, Stock: stock})
}

func (eb *EventBus) PublishPriceUpdated(productID, sku string, price decimal.Decimal) {
	eb.Publish(EventPriceUpdated, PriceChange{ProductID: productID, SKU: sku, Price: price})
}

// FormatSSE renders event as an SSE frame with id, event and data fields.
func FormatSSE(event Event) (string, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return "", err
	}

	frame := make([]byte, 0, len(data)+64)
	if event.Seq > 0 {
		frame = append(frame, "id: "...)
		frame = strconv.AppendUint(frame, event.Seq, 10)
		frame = append(frame, '\n')
	}
	frame = append(frame, "event: "...)
	frame = append(frame, event.Type...)
	frame = append(frame, "\ndata: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)
	return string(frame), nil
}
