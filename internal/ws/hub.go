// Package ws fans task change events out to WebSocket subscribers grouped by
// project. With a redis client configured, events travel through a pub/sub
// channel so every instance delivers to its own connections; without one the
// hub broadcasts in-process.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/tawargy/project-manager/internal/model"
)

const (
	TaskUpdated = "TASK_UPDATED"
	TaskDeleted = "TASK_DELETED"
)

const eventChannel = "tasks:events"

type Event struct {
	Type      string      `json:"type"`
	ProjectID uint        `json:"projectId"`
	TaskID    uint        `json:"taskId"`
	Data      *model.Task `json:"data,omitempty"`
}

type subscriber struct {
	ch chan Event
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint][]*subscriber // projectID -> subscribers
	rdb         *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		subscribers: make(map[uint][]*subscriber),
		rdb:         rdb,
	}
}

// Subscribe registers interest in one project's task events. The returned
// cancel func must be called when the connection goes away.
func (h *Hub) Subscribe(projectID uint) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, 64)}
	h.subscribers[projectID] = append(h.subscribers[projectID], sub)

	unsub := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[projectID]
		for i, s := range subs {
			if s == sub {
				h.subscribers[projectID] = append(subs[:i], subs[i+1:]...)
				close(sub.ch)
				break
			}
		}
		if len(h.subscribers[projectID]) == 0 {
			delete(h.subscribers, projectID)
		}
	}
	return sub.ch, unsub
}

// Publish sends an event to every subscriber of its project. Through redis
// when configured, so the event reaches subscribers on other instances too.
func (h *Hub) Publish(ctx context.Context, event Event) {
	if h.rdb == nil {
		h.broadcast(event)
		return
	}
	data, _ := json.Marshal(event)
	if err := h.rdb.Publish(ctx, eventChannel, string(data)).Err(); err != nil {
		log.Printf("ws: publish task event: %v", err)
		h.broadcast(event)
	}
}

// Run consumes the redis channel and delivers to local subscribers. Returns
// when ctx is cancelled. No-op without a redis client.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	pubsub := h.rdb.Subscribe(ctx, eventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("ws: bad task event payload: %v", err)
				continue
			}
			h.broadcast(event)
		}
	}
}

func (h *Hub) broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[event.ProjectID] {
		select {
		case sub.ch <- event:
		default:
			// drop if full
		}
	}
}
