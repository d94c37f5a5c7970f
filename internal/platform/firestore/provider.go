package firestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/chairlinked/api/internal/platform/config"
)

const (
	connectTimeout  = 10 * time.Second
	emulatorHostEnv = "FIRESTORE_EMULATOR_HOST"
)

var ErrProviderClosed = errors.New("firestore: provider is closed")

// Provider owns the Firestore client shared by the demo repositories. The
// client is created on first use; a failed connect is retried by the next
// caller.
type Provider struct {
	projectID      string
	emulatorHost   string
	pingCollection string
	clientOpts     []option.ClientOption

	mu     sync.Mutex
	client *firestore.Client
	closed bool
}

// NewProvider reads the project and emulator host from cfg, falling back to
// FIRESTORE_EMULATOR_HOST. Readiness probes read from the demos collection.
func NewProvider(cfg config.FirestoreConfig, clientOpts ...option.ClientOption) *Provider {
	emulator := strings.TrimSpace(cfg.EmulatorHost)
	if emulator == "" {
		emulator = strings.TrimSpace(os.Getenv(emulatorHostEnv))
	}
	return &Provider{
		projectID:      strings.TrimSpace(cfg.ProjectID),
		emulatorHost:   emulator,
		pingCollection: cfg.DemosCollection,
		clientOpts:     clientOpts,
	}
}

func (p *Provider) Client(ctx context.Context) (*firestore.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.closed:
		return nil, ErrProviderClosed
	case p.client != nil:
		return p.client, nil
	}
	client, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

func (p *Provider) connect(ctx context.Context) (*firestore.Client, error) {
	if p.projectID == "" {
		return nil, errors.New("firestore: project id is required")
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := append([]option.ClientOption(nil), p.clientOpts...)
	if p.emulatorHost != "" {
		// the emulator is plaintext and ignores credentials
		opts = []option.ClientOption{
			option.WithoutAuthentication(),
			option.WithEndpoint(p.emulatorHost),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		}
	}
	client, err := firestore.NewClient(ctx, p.projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: create client for %s: %w", p.projectID, err)
	}
	return client, nil
}

// Ping reads at most one demo. An empty collection still counts as reachable.
func (p *Provider) Ping(ctx context.Context) error {
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	collection := p.pingCollection
	if collection == "" {
		collection = "demos"
	}
	docs := client.Collection(collection).Limit(1).Documents(ctx)
	defer docs.Stop()
	if _, err := docs.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return WrapError("firestore.ping", err)
	}
	return nil
}

// RunTransaction executes fn inside a transaction on the shared client.
func (p *Provider) RunTransaction(ctx context.Context, op string, fn TxFunc, opts ...TxOption) error {
	client, err := p.Client(ctx)
	if err != nil {
		return err
	}
	return RunTransaction(ctx, client, op, fn, opts...)
}

// Close releases the client and fails later Client calls. It gives up waiting
// when ctx ends.
func (p *Provider) Close(ctx context.Context) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	client := p.client
	p.client, p.closed = nil, true
	p.mu.Unlock()

	if client == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- client.Close() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
