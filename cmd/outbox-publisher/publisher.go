package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

const (
	maxBackoff   = 10 * time.Second
	jitterWindow = 250 * time.Millisecond
)

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// publisherCache builds at most one publisher per topic. A nil publisher is
// not cached so a later batch can try again.
type publisherCache struct {
	build  publisherFactory
	topics map[string]publisher
}

func newPublisherCache(build publisherFactory) *publisherCache {
	return &publisherCache{build: build, topics: map[string]publisher{}}
}

func (c *publisherCache) get(topic string) publisher {
	if pub, ok := c.topics[topic]; ok {
		return pub
	}
	pub := c.build(topic)
	if pub != nil {
		c.topics[topic] = pub
	}
	return pub
}

// backoff doubles the wait after each failed batch, capped at max.
type backoff struct {
	base, max time.Duration
	current   time.Duration
}

func (b *backoff) fail() time.Duration {
	b.current = nextBackoff(b.current, b.base, b.max)
	return b.current
}

func (b *backoff) reset() { b.current = 0 }

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, max)
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return gcpPublisher{p}
}

type gcpPublisher struct {
	inner *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return gcpPublishResult{p.inner.Publish(ctx, msg)}
}

type gcpPublishResult struct {
	inner *gcppubsub.PublishResult
}

func (r gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r.inner == nil {
		return "", errors.New("publish result is nil")
	}
	return r.inner.Get(ctx)
}
