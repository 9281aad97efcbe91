// Package cache provides the in-process TTL caches used for session lookups
// and categorization answers, plus a janitor that evicts expired entries.
package cache

import (
	"context"
	"time"

	"finboard/internal/log"
)

type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries in bulk.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps every registered cache.
type Janitor struct {
	caches []Cleaner
	logger *log.Logger
	done   chan struct{}
}

func NewJanitor(logger *log.Logger) *Janitor {
	return &Janitor{logger: logger.WithComponent(log.ComponentCache)}
}

func (j *Janitor) Register(c Cleaner) {
	j.caches = append(j.caches, c)
}

// Start runs the sweep loop until ctx is cancelled. Wait blocks until it has exited.
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	j.done = make(chan struct{})
	go func() {
		defer close(j.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := j.Sweep(); n > 0 {
					j.logger.Debug("Evicted expired cache entries", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Sweep evicts expired entries from every cache and returns how many were dropped.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

func (j *Janitor) Wait() {
	if j.done != nil {
		<-j.done
	}
}
