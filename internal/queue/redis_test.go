package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fee-desk/internal/model"

	"github.com/go-redis/redis/v8"
)

type fakePusher struct {
	pushed map[string][]string
	err    error
}

func (f *fakePusher) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	if f.pushed == nil {
		f.pushed = make(map[string][]string)
	}
	for _, v := range values {
		f.pushed[key] = append(f.pushed[key], string(v.([]byte)))
	}
	return redis.NewIntResult(int64(len(f.pushed[key])), nil)
}

func TestOutcomePublisherRoutesByStatus(t *testing.T) {
	pusher := &fakePusher{}
	p := newOutcomePublisher(pusher, "fee-desk:outcomes", ":failed")
	p.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	ctx := context.Background()
	p.Notify(ctx, model.SubmissionItem{ID: "ok", Status: model.SubmissionStatusSuccess})
	p.Notify(ctx, model.SubmissionItem{ID: "bad", Status: model.SubmissionStatusError, Message: FallbackMessage})
	p.Notify(ctx, model.SubmissionItem{ID: "early", Status: model.SubmissionStatusLoading})

	if got := len(pusher.pushed["fee-desk:outcomes"]); got != 2 {
		t.Fatalf("outcome list has %d entries, want 2", got)
	}
	failed := pusher.pushed["fee-desk:outcomes:failed"]
	if len(failed) != 1 {
		t.Fatalf("failed list has %d entries, want 1", len(failed))
	}

	var rec model.OutcomeRecord
	if err := json.Unmarshal([]byte(failed[0]), &rec); err != nil {
		t.Fatalf("failed entry is not JSON: %v", err)
	}
	if rec.Item.ID != "bad" || rec.CompletedAt != "2024-01-02T03:04:05Z" {
		t.Errorf("failed entry = %+v", rec)
	}
}

func TestOutcomePublisherSwallowsErrors(t *testing.T) {
	p := newOutcomePublisher(&fakePusher{err: errors.New("redis down")}, "outcomes", "")
	// Must not panic or block.
	p.Notify(context.Background(), model.SubmissionItem{ID: "x", Status: model.SubmissionStatusError})
}
