package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffDelayCapped(t *testing.T) {
	assert.Equal(t, 3*time.Second, backoffDelay(0))
	assert.Equal(t, 3*time.Second, backoffDelay(1))
	assert.Equal(t, 6*time.Second, backoffDelay(2))
	assert.Equal(t, 12*time.Second, backoffDelay(3))
	assert.Equal(t, 24*time.Second, backoffDelay(4))
	assert.Equal(t, 48*time.Second, backoffDelay(5))
	assert.Equal(t, 60*time.Second, backoffDelay(6))
	assert.Equal(t, 60*time.Second, backoffDelay(50))
}

func TestUpdatedEventInvalidatesTaskList(t *testing.T) {
	cache := NewCache()
	cache.Set(TasksKey(1), []Task{{ID: 10, ProjectID: 1}})

	w := NewTaskWatcher("ws://unused", "", 1, cache)
	w.handleEvent(taskEvent{Type: "TASK_UPDATED", ProjectID: 1, TaskID: 10})

	_, ok := cache.Get(TasksKey(1))
	assert.False(t, ok)
}

func TestDeletedEventRemovesTaskInPlace(t *testing.T) {
	cache := NewCache()
	cache.Set(TasksKey(1), []Task{
		{ID: 10, ProjectID: 1},
		{ID: 11, ProjectID: 1},
	})

	w := NewTaskWatcher("ws://unused", "", 1, cache)
	w.handleEvent(taskEvent{Type: "TASK_DELETED", ProjectID: 1, TaskID: 10})

	v, ok := cache.Get(TasksKey(1))
	require.True(t, ok, "delete reconciles in place, it does not invalidate")
	tasks := v.([]Task)
	require.Len(t, tasks, 1)
	assert.Equal(t, uint(11), tasks[0].ID)
}

func TestEventForOtherProjectIgnored(t *testing.T) {
	cache := NewCache()
	cache.Set(TasksKey(1), []Task{{ID: 10, ProjectID: 1}})

	w := NewTaskWatcher("ws://unused", "", 1, cache)
	w.handleEvent(taskEvent{Type: "TASK_UPDATED", ProjectID: 2, TaskID: 99})

	_, ok := cache.Get(TasksKey(1))
	assert.True(t, ok)
}
