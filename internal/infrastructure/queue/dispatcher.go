package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/shiftpool/marketplace-api/internal/api/metrics"
	"github.com/shiftpool/marketplace-api/internal/core/domain"
	"github.com/shiftpool/marketplace-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	defaultBuffer  = 256
)

// Dispatcher fans notifications out to a fixed set of workers using
// consistent hashing on the recipient, so one user's inbox entries are
// delivered in the order they were produced.
type Dispatcher struct {
	workers []chan domain.Notification
	labels  []string // worker_id metric label per shard
	service ports.NotificationService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers holding
// buffer pending notifications each. Non-positive values fall back to the
// defaults.
func NewDispatcher(numWorkers, buffer int, service ports.NotificationService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	d := &Dispatcher{
		workers: make([]chan domain.Notification, numWorkers),
		labels:  make([]string, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, buffer)
		d.labels[i] = strconv.Itoa(i)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a notification to the worker owning its recipient. The call
// blocks only when that worker's buffer is full.
func (d *Dispatcher) Enqueue(n domain.Notification) {
	i := d.shardIndex(n.RecipientID)
	d.workers[i] <- n
	metrics.NotificationsQueueDepth.WithLabelValues(d.labels[i]).Inc()
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipientID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(recipientID, 10)))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(d.labels[id]).Dec()
			if err := d.service.Deliver(ctx, n); err != nil {
				d.log.Error().Err(err).
					Str("ref", n.Ref).
					Int64("recipient_id", n.RecipientID).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
