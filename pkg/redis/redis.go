package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"KeikoHub/internal/entity"
	"KeikoHub/pkg/log"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

const (
	passageKeyPrefix  = "keiko:passage:"
	DefaultPassageTTL = 24 * time.Hour
)

var ErrPassageNotFound = errors.New("passage not found in cache")

type IRedis interface {
	SetPassage(ctx context.Context, passage *entity.Passage, expiration time.Duration) error
	GetPassage(ctx context.Context, id string) (*entity.Passage, error)
	DeletePassage(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type redisClient struct {
	client *redis.Client
	json   jsoniter.API
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	log.Info(log.Fields{"address": redisAddr}, "Connecting to Redis")

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error(log.Fields{"address": redisAddr, "error": err.Error()}, "Failed to connect to Redis")
	} else {
		log.Info(log.Fields{"address": redisAddr}, "Successfully connected to Redis")
	}

	return NewWithClient(client)
}

func NewWithClient(client *redis.Client) IRedis {
	return &redisClient{
		client: client,
		json:   jsoniter.ConfigCompatibleWithStandardLibrary,
	}
}

func passageKey(id string) string {
	return passageKeyPrefix + id
}

func (r *redisClient) SetPassage(ctx context.Context, passage *entity.Passage, expiration time.Duration) error {
	data, err := r.json.Marshal(passage)
	if err != nil {
		return fmt.Errorf("encoding passage %s: %w", passage.ID, err)
	}

	entry := log.WithRequestID(ctx).WithField("cache_key", passageKey(passage.ID))
	entry.Debug(fmt.Sprintf("Caching passage with expiration %v", expiration))
	if err := r.client.Set(ctx, passageKey(passage.ID), data, expiration).Err(); err != nil {
		entry.WithField("error", err.Error()).Error("Error caching passage")
		return err
	}
	return nil
}

func (r *redisClient) GetPassage(ctx context.Context, id string) (*entity.Passage, error) {
	data, err := r.client.Get(ctx, passageKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		log.WithRequestID(ctx).WithField("cache_key", passageKey(id)).Debug("Passage not found in cache")
		return nil, ErrPassageNotFound
	} else if err != nil {
		log.WithRequestID(ctx).WithFields(log.Fields{
			"cache_key": passageKey(id),
			"error":     err.Error(),
		}).Error("Error reading passage")
		return nil, err
	}

	var passage entity.Passage
	if err := r.json.Unmarshal(data, &passage); err != nil {
		return nil, fmt.Errorf("decoding passage %s: %w", id, err)
	}
	return &passage, nil
}

func (r *redisClient) DeletePassage(ctx context.Context, id string) error {
	entry := log.WithRequestID(ctx).WithField("cache_key", passageKey(id))

	result, err := r.client.Del(ctx, passageKey(id)).Result()
	if err != nil {
		entry.WithField("error", err.Error()).Error("Error deleting passage")
		return err
	}

	if result == 0 {
		entry.Debug("Passage not found for deletion")
	}
	return nil
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
