package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultInvalidationChannel is the Redis Pub/Sub channel for schedule cache
// invalidation messages.
const DefaultInvalidationChannel = "billing:schedule:invalidate"

const defaultCloseTimeout = 5 * time.Second

// InvalidationScope identifies what a message invalidates
type InvalidationScope string

const (
	ScopeContract InvalidationScope = "contract"
	ScopeClient   InvalidationScope = "client"
)

// InvalidationMessage is the payload published on the invalidation channel.
// Subscribers drop their cached schedule data for the given scope and ID.
type InvalidationMessage struct {
	Scope     InvalidationScope `json:"scope"`
	ID        uuid.UUID         `json:"id"`
	Timestamp int64             `json:"timestamp"`
}

// RedisScheduleInvalidator implements the billing CacheInvalidator using
// Redis Pub/Sub so every instance learns about stale schedule data.
type RedisScheduleInvalidator struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisScheduleInvalidatorOption is a functional option for configuring the invalidator
type RedisScheduleInvalidatorOption func(*RedisScheduleInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) RedisScheduleInvalidatorOption {
	return func(i *RedisScheduleInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) RedisScheduleInvalidatorOption {
	return func(i *RedisScheduleInvalidator) {
		i.logger = logger
	}
}

// NewRedisScheduleInvalidator creates a new Redis Pub/Sub schedule invalidator
func NewRedisScheduleInvalidator(cfg config.RedisConfig, opts ...RedisScheduleInvalidatorOption) (*RedisScheduleInvalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	invalidator := &RedisScheduleInvalidator{
		client:     client,
		ownsClient: true,
		channel:    DefaultInvalidationChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator, nil
}

// NewRedisScheduleInvalidatorWithClient creates an invalidator with an existing
// Redis client. The caller retains ownership of the client.
func NewRedisScheduleInvalidatorWithClient(client *redis.Client, opts ...RedisScheduleInvalidatorOption) *RedisScheduleInvalidator {
	invalidator := &RedisScheduleInvalidator{
		client:     client,
		ownsClient: false,
		channel:    DefaultInvalidationChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(invalidator)
	}

	return invalidator
}

// InvalidateContract publishes an invalidation message for a contract's schedule
func (i *RedisScheduleInvalidator) InvalidateContract(ctx context.Context, contractID uuid.UUID) error {
	return i.publish(ctx, InvalidationMessage{Scope: ScopeContract, ID: contractID})
}

// InvalidateClient publishes an invalidation message for a client's schedule data
func (i *RedisScheduleInvalidator) InvalidateClient(ctx context.Context, clientID uuid.UUID) error {
	return i.publish(ctx, InvalidationMessage{Scope: ScopeClient, ID: clientID})
}

func (i *RedisScheduleInvalidator) publish(ctx context.Context, msg InvalidationMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish invalidation message",
			zap.String("channel", i.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	i.logger.Debug("Published invalidation message",
		zap.String("scope", string(msg.Scope)),
		zap.String("id", msg.ID.String()))

	return nil
}

// Subscribe starts listening for invalidation messages. The callback is
// invoked for each received message. Blocks until the context is cancelled,
// so call it in a goroutine.
func (i *RedisScheduleInvalidator) Subscribe(ctx context.Context, callback func(msg InvalidationMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	i.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	i.mu.Lock()
	i.cancelFn = cancel
	i.mu.Unlock()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("Subscribed to invalidation channel", zap.String("channel", i.channel))

	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			i.mu.Lock()
			i.isRunning = false
			i.mu.Unlock()
			i.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Invalidation channel closed")
				i.mu.Lock()
				i.isRunning = false
				i.mu.Unlock()
				i.markDone()
				return nil
			}

			var invalidation InvalidationMessage
			if err := json.Unmarshal([]byte(msg.Payload), &invalidation); err != nil {
				i.logger.Error("Failed to unmarshal invalidation message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			go func(m InvalidationMessage) {
				defer func() {
					if r := recover(); r != nil {
						i.logger.Error("Panic in invalidation callback", zap.Any("panic", r))
					}
				}()
				callback(m)
			}(invalidation)
		}
	}
}

func (i *RedisScheduleInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close releases any resources held by the invalidator
func (i *RedisScheduleInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(defaultCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if i.ownsClient {
		return i.client.Close()
	}
	return nil
}

var _ billing.CacheInvalidator = (*RedisScheduleInvalidator)(nil)

// NoopInvalidator is a CacheInvalidator that does nothing. Used for
// single-instance deployments without Redis and in tests.
type NoopInvalidator struct{}

// InvalidateContract implements billing.CacheInvalidator
func (NoopInvalidator) InvalidateContract(ctx context.Context, contractID uuid.UUID) error {
	return nil
}

// InvalidateClient implements billing.CacheInvalidator
func (NoopInvalidator) InvalidateClient(ctx context.Context, clientID uuid.UUID) error {
	return nil
}

var _ billing.CacheInvalidator = NoopInvalidator{}
