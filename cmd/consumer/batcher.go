package main

import (
	"context"
	"time"

	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/pkg/log"
)

type detectionUpserter interface {
	UpsertBatch(ctx context.Context, msgs []model.DetectionMessage) error
}

// batcher gom message thành batch theo kích thước hoặc timeout
type batcher struct {
	Logger  log.Logger
	Store   detectionUpserter
	Size    int
	Timeout time.Duration
}

// Run flushes on size, on timeout and once more when ctx ends or messages closes.
func (b *batcher) Run(ctx context.Context, messages <-chan model.DetectionMessage) {
	var batch []model.DetectionMessage
	timer := time.NewTimer(b.Timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Drain what the handler already queued
		drain:
			for {
				select {
				case msg, ok := <-messages:
					if !ok {
						break drain
					}
					batch = append(batch, msg)
				default:
					break drain
				}
			}
			b.flush(context.WithoutCancel(ctx), batch)
			return

		case msg, ok := <-messages:
			if !ok {
				b.flush(ctx, batch)
				return
			}
			batch = append(batch, msg)
			if len(batch) >= b.Size {
				b.flush(ctx, batch)
				batch = nil
				timer.Reset(b.Timeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				b.flush(ctx, batch)
				batch = nil
			}
			timer.Reset(b.Timeout)
		}
	}
}

func (b *batcher) flush(ctx context.Context, batch []model.DetectionMessage) {
	if len(batch) == 0 {
		return
	}
	b.Logger.Info(ctx, "Processing batch of %d detections", len(batch))
	if err := b.Store.UpsertBatch(ctx, batch); err != nil {
		b.Logger.Error(ctx, "Failed to save batch of detections: %v", err)
		return
	}
	b.Logger.Info(ctx, "Successfully saved batch of %d detections", len(batch))
}
