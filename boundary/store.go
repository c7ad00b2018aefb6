package boundary

import (
	"context"
	"fmt"
	"sync"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/omtsf/omtsf-go/graph"
)

// SaltStore holds the redaction salt per disclosure-scope key, so that a
// producer emitting several files for one audience redacts consistently.
//
// Thread-safety: implementations are safe for concurrent use.
type SaltStore interface {
	// Get returns the salt stored under key, or ErrSaltNotFound.
	Get(ctx context.Context, key string) (graph.FileSalt, error)

	// Put stores a salt under key, replacing any existing value.
	Put(ctx context.Context, key string, salt graph.FileSalt) error

	// GetOrCreate returns the salt under key, generating and storing a fresh
	// one if the key is empty. Concurrent callers observe the same salt.
	GetOrCreate(ctx context.Context, key string) (graph.FileSalt, error)
}

// MemorySaltStore is an in-process SaltStore for tests and single-producer
// use.
type MemorySaltStore struct {
	mu    sync.RWMutex
	salts map[string]graph.FileSalt
}

// NewMemorySaltStore creates an empty in-memory salt store.
func NewMemorySaltStore() *MemorySaltStore {
	return &MemorySaltStore{salts: make(map[string]graph.FileSalt)}
}

// Get implements SaltStore.
func (s *MemorySaltStore) Get(_ context.Context, key string) (graph.FileSalt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	salt, ok := s.salts[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrSaltNotFound, key)
	}
	return salt, nil
}

// Put implements SaltStore.
func (s *MemorySaltStore) Put(_ context.Context, key string, salt graph.FileSalt) error {
	if _, err := graph.ParseFileSalt(string(salt)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salts[key] = salt
	return nil
}

// GetOrCreate implements SaltStore.
func (s *MemorySaltStore) GetOrCreate(_ context.Context, key string) (graph.FileSalt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if salt, ok := s.salts[key]; ok {
		return salt, nil
	}
	salt, err := NewSalt()
	if err != nil {
		return "", err
	}
	s.salts[key] = salt
	return salt, nil
}

// EtcdConfig configures the etcd-backed salt store.
type EtcdConfig struct {
	// Endpoints lists the etcd cluster members, e.g. ["localhost:2379"].
	Endpoints []string

	// Namespace prefixes every key; defaults to "omtsf".
	Namespace string

	// DialTimeout bounds the initial connection; defaults to 5s.
	DialTimeout time.Duration
}

// EtcdStore is a SaltStore backed by an etcd cluster, for cooperating
// producers that must share per-scope salts.
//
// Thread-safety: all methods are safe for concurrent use.
type EtcdStore struct {
	client    *clientv3.Client
	namespace string

	mu     sync.Mutex
	closed bool
}

// NewEtcdStore connects to the etcd cluster and verifies connectivity.
// The store must be closed with Close when no longer needed.
func NewEtcdStore(cfg EtcdConfig) (*EtcdStore, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "omtsf"
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := cli.Get(ctx, "health-check"); err != nil && err != context.DeadlineExceeded {
		cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &EtcdStore{client: cli, namespace: namespace}, nil
}

// Get implements SaltStore.
func (s *EtcdStore) Get(ctx context.Context, key string) (graph.FileSalt, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}
	resp, err := s.client.Get(ctx, s.buildKey(key))
	if err != nil {
		return "", fmt.Errorf("failed to get salt: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSaltNotFound, key)
	}
	return graph.ParseFileSalt(string(resp.Kvs[0].Value))
}

// Put implements SaltStore.
func (s *EtcdStore) Put(ctx context.Context, key string, salt graph.FileSalt) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := graph.ParseFileSalt(string(salt)); err != nil {
		return err
	}
	if _, err := s.client.Put(ctx, s.buildKey(key), string(salt)); err != nil {
		return fmt.Errorf("failed to put salt: %w", err)
	}
	return nil
}

// GetOrCreate implements SaltStore. Creation is a compare-and-set on the
// key's create revision, so concurrent producers agree on one salt.
func (s *EtcdStore) GetOrCreate(ctx context.Context, key string) (graph.FileSalt, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}
	fresh, err := NewSalt()
	if err != nil {
		return "", err
	}
	etcdKey := s.buildKey(key)
	resp, err := s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(etcdKey), "=", 0)).
		Then(clientv3.OpPut(etcdKey, string(fresh))).
		Else(clientv3.OpGet(etcdKey)).
		Commit()
	if err != nil {
		return "", fmt.Errorf("failed to get-or-create salt: %w", err)
	}
	if resp.Succeeded {
		return fresh, nil
	}
	kvs := resp.Responses[0].GetResponseRange().Kvs
	if len(kvs) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSaltNotFound, key)
	}
	return graph.ParseFileSalt(string(kvs[0].Value))
}

// Close releases the etcd connection. Methods called after Close return
// ErrStoreClosed.
func (s *EtcdStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func (s *EtcdStore) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// buildKey constructs the etcd key for a scope: /namespace/salts/key.
func (s *EtcdStore) buildKey(key string) string {
	return fmt.Sprintf("/%s/salts/%s", s.namespace, key)
}
