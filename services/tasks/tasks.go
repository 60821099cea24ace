package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"saubio/models"

	"github.com/hibiken/asynq"
)

const (
	TypeSuggestionFetch = "matching:suggestions:fetch"
	TypeBookingSync     = "booking:sync"
)

// NewSuggestionFetchTask builds the task fetching smart-match suggestions for a session.
// The request id doubles as the task id so the same request is never queued twice.
func NewSuggestionFetchTask(payload models.SuggestionFetchPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSuggestionFetch, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(30 * time.Second),
		asynq.Retention(10 * time.Minute),
	}
	if payload.RequestID != "" {
		opts = append(opts, asynq.TaskID(payload.RequestID))
	}
	return task, opts, nil
}

// ParseSuggestionFetchTask decodes a suggestion fetch payload.
func ParseSuggestionFetchTask(task *asynq.Task) (models.SuggestionFetchPayload, error) {
	var p models.SuggestionFetchPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", TypeSuggestionFetch, err)
	}
	if p.SessionID == "" {
		return p, fmt.Errorf("invalid %s payload: missing session id", TypeSuggestionFetch)
	}
	return p, nil
}

// NewBookingSyncTask builds the periodic booking mirror task.
func NewBookingSyncTask() *asynq.Task {
	return asynq.NewTask(TypeBookingSync, nil)
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqSuggestionQueue enqueues suggestion fetches on the asynq queue.
type AsynqSuggestionQueue struct {
	client enqueuer
}

func NewAsynqSuggestionQueue(client *asynq.Client) *AsynqSuggestionQueue {
	return &AsynqSuggestionQueue{client: client}
}

func (q *AsynqSuggestionQueue) EnqueueSuggestionFetch(ctx context.Context, sessionID, requestID string) error {
	task, opts, err := NewSuggestionFetchTask(models.SuggestionFetchPayload{
		SessionID: sessionID,
		RequestID: requestID,
	})
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue suggestion fetch for session %s: %w", sessionID, err)
	}
	return nil
}
