package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/nfvri/ris-simulator/pkg/simulation"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const resultsSuffix = "-Results"

// Store persists simulation results keyed by run id
type Store interface {
	AddResults(ctx context.Context, runID string, results *simulation.Results) error
	GetResults(ctx context.Context, runID string) (*simulation.Results, error)
	DeleteResults(ctx context.Context, runID string) (*simulation.Results, error)
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.New().String()
}

func resultsKey(runID string) string {
	return runID + resultsSuffix
}

func encode(results *simulation.Results) ([]byte, error) {
	if results == nil {
		return nil, errors.NewInvalid("no results to store")
	}
	b, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %v ", err)
	}
	return b, nil
}

func decode(runID string, b []byte) (*simulation.Results, error) {
	if len(b) == 0 {
		return nil, errors.NewNotFound("results for run id %s do not exist", runID)
	}
	results := &simulation.Results{}
	if err := json.Unmarshal(b, results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %v ", err)
	}
	return results, nil
}

type Options struct {
	Address  string
	Username string
	Password string
	DB       int
	// ConnectRetries bounds the ping attempts made by NewRedisStore.
	ConnectRetries uint64
}

type RedisStore struct {
	ResultsDB *goredis.Client
}

// NewRedisStore connects and pings the server, backing off exponentially
// between attempts.
func NewRedisStore(ctx context.Context, opts Options) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = 10 * time.Second
	ping := func() error {
		err := client.Ping(ctx).Err()
		if err != nil {
			log.Warnf("redis at %s not ready: %v", opts.Address, err)
		}
		return err
	}
	err := backoff.Retry(ping, backoff.WithContext(backoff.WithMaxRetries(policy, opts.ConnectRetries), ctx))
	if err != nil {
		_ = client.Close()
		return nil, errors.NewUnavailable("redis at %s unreachable: %v", opts.Address, err)
	}
	log.Infof("Connected to redis at %s", opts.Address)
	return &RedisStore{ResultsDB: client}, nil
}

func (s *RedisStore) AddResults(ctx context.Context, runID string, results *simulation.Results) error {
	b, err := encode(results)
	if err != nil {
		return err
	}
	return s.ResultsDB.Set(ctx, resultsKey(runID), b, time.Duration(0)).Err()
}

func (s *RedisStore) GetResults(ctx context.Context, runID string) (*simulation.Results, error) {
	b, err := s.ResultsDB.Get(ctx, resultsKey(runID)).Bytes()
	if err == goredis.Nil {
		return nil, errors.NewNotFound("results for run id %s do not exist", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching results for run id %s: %v", runID, err)
	}
	return decode(runID, b)
}

func (s *RedisStore) DeleteResults(ctx context.Context, runID string) (*simulation.Results, error) {
	results, err := s.GetResults(ctx, runID)
	if err != nil {
		return nil, err
	}
	err = s.ResultsDB.Del(ctx, resultsKey(runID)).Err()
	return results, err
}

func (s *RedisStore) Close() error {
	return s.ResultsDB.Close()
}

// MockedRedisStore keeps the encoded results in memory. The zero value is
// ready to use.
type MockedRedisStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *MockedRedisStore) AddResults(ctx context.Context, runID string, results *simulation.Results) error {
	b, err := encode(results)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[resultsKey(runID)] = b
	return nil
}

func (m *MockedRedisStore) GetResults(ctx context.Context, runID string) (*simulation.Results, error) {
	m.mu.Lock()
	b := m.data[resultsKey(runID)]
	m.mu.Unlock()
	return decode(runID, b)
}

func (m *MockedRedisStore) DeleteResults(ctx context.Context, runID string) (*simulation.Results, error) {
	results, err := m.GetResults(ctx, runID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	delete(m.data, resultsKey(runID))
	m.mu.Unlock()
	return results, nil
}

// Keys lists the stored keys
func (m *MockedRedisStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
