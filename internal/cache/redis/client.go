package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bousai-navi/backend/pkg/logger"
	"github.com/bousai-navi/backend/pkg/utils"
)

// Client is a hot read cache in front of the durable sqlite product-list
// cache. It is never authoritative: a miss here falls through to sqlite, and
// entries expire on a TTL. All methods are safe on a nil receiver so the
// orchestrator does not care whether redis is configured.
type Client struct {
	client  *redis.Client
	listTTL time.Duration
}

func NewClient(host string, port int, password string, db int, listTTLSec int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{
		client:  client,
		listTTL: time.Duration(listTTLSec) * time.Second,
	}, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func listKey(userID int64, fingerprint string) string {
	return fmt.Sprintf("list:%d:%s", userID, utils.HashString(fingerprint))
}

func (c *Client) SetProductList(ctx context.Context, userID int64, fingerprint string, groupedResults interface{}) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(groupedResults)
	if err != nil {
		return fmt.Errorf("failed to marshal grouped results: %w", err)
	}

	err = c.client.Set(ctx, listKey(userID, fingerprint), data, c.listTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set product list cache: %w", err)
	}

	logger.Debug("Product list hot-cached", zap.Int64("user_id", userID))
	return nil
}

func (c *Client) GetProductList(ctx context.Context, userID int64, fingerprint string, groupedResults interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, listKey(userID, fingerprint)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get product list cache: %w", err)
	}

	err = json.Unmarshal(data, groupedResults)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal grouped results: %w", err)
	}

	logger.Debug("Product list hot-cache hit", zap.Int64("user_id", userID))
	return true, nil
}
