package client

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	reconnectBase = 3 * time.Second
	reconnectCap  = 60 * time.Second
)

type taskEvent struct {
	Type      string `json:"type"`
	ProjectID uint   `json:"projectId"`
	TaskID    uint   `json:"taskId"`
	Data      *Task  `json:"data,omitempty"`
}

// TaskWatcher keeps one WebSocket open per watched project and reconciles
// the query cache from server-pushed events: an update invalidates the task
// list, a delete removes the task from the cached list in place.
//
// Reconnects use capped exponential backoff rather than the fixed-delay
// retry the original dashboard shipped with.
type TaskWatcher struct {
	url       string
	token     string
	projectID uint
	cache     *Cache
}

// NewTaskWatcher prepares a watcher for one project. wsURL points at the
// notification endpoint, e.g. "ws://localhost:8080/ws/tasks".
func NewTaskWatcher(wsURL, token string, projectID uint, cache *Cache) *TaskWatcher {
	return &TaskWatcher{url: wsURL, token: token, projectID: projectID, cache: cache}
}

// Run connects and processes events until ctx is cancelled.
func (w *TaskWatcher) Run(ctx context.Context) {
	attempt := 0
	for {
		if err := w.connectOnce(ctx); err == nil {
			attempt = 0
		} else {
			attempt++
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoffDelay(attempt)):
		}
	}
}

// connectOnce returns nil if the subscription was established before the
// connection dropped, so the caller resets its backoff.
func (w *TaskWatcher) connectOnce(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, w.url+"?token="+w.token, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "closed")

	sub := map[string]interface{}{"type": "SUBSCRIBE", "projectId": w.projectID}
	if err := wsjson.Write(ctx, conn, sub); err != nil {
		return err
	}

	for {
		var event taskEvent
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			// The subscription worked; the drop is not a connect failure.
			return nil
		}
		w.handleEvent(event)
	}
}

func (w *TaskWatcher) handleEvent(event taskEvent) {
	if event.ProjectID != w.projectID {
		return
	}
	switch event.Type {
	case "TASK_UPDATED":
		w.cache.Invalidate(TasksKey(w.projectID))
	case "TASK_DELETED":
		w.cache.Update(TasksKey(w.projectID), func(v interface{}) interface{} {
			tasks, ok := v.([]Task)
			if !ok {
				return v
			}
			kept := make([]Task, 0, len(tasks))
			for _, t := range tasks {
				if t.ID != event.TaskID {
					kept = append(kept, t)
				}
			}
			return kept
		})
	}
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return reconnectBase
	}
	delay := reconnectBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= reconnectCap {
			return reconnectCap
		}
	}
	return delay
}
