package queue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestEnqueueAndGetJob(t *testing.T) {
	redis := miniredis.RunT(t)
	q, err := NewRedisJobQueue(RedisQueueConfig{Addr: redis.Addr(), Stream: "test:cleanup"})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	ctx := context.Background()

	job, err := q.Enqueue(ctx, "file-1")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if job.ID == "" || job.FileID != "file-1" || job.Status != StatusQueued {
		t.Fatalf("unexpected job: %+v", job)
	}

	got, ok, err := q.GetJob(ctx, job.ID)
	if err != nil || !ok {
		t.Fatalf("get job: ok=%v err=%v", ok, err)
	}
	if got.FileID != "file-1" || got.Status != StatusQueued || got.Attempts != 0 {
		t.Fatalf("unexpected stored job: %+v", got)
	}
}

func TestEnqueueRequiresFileID(t *testing.T) {
	redis := miniredis.RunT(t)
	q, err := NewRedisJobQueue(RedisQueueConfig{Addr: redis.Addr()})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	if _, err := q.Enqueue(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty file id")
	}
}

func TestGetJobMissing(t *testing.T) {
	redis := miniredis.RunT(t)
	q, err := NewRedisJobQueue(RedisQueueConfig{Addr: redis.Addr()})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	if _, ok, err := q.GetJob(context.Background(), "nope"); ok || err != nil {
		t.Fatalf("missing job: ok=%v err=%v", ok, err)
	}
}
