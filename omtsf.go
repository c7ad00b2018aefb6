package omtsf

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/omtsf/omtsf-go/config"
	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/merge"
	"github.com/omtsf/omtsf-go/redact"
	"github.com/omtsf/omtsf-go/resolve"
	"github.com/omtsf/omtsf-go/update"
)

// Merge combines independently produced graph files with a default engine.
func Merge(ctx context.Context, files ...*graph.File) (*graph.File, *merge.Metadata, []resolve.Warning, error) {
	return merge.NewEngine().Merge(ctx, files...)
}

// Update reconciles a new export against a prior export from the same
// source system with a default engine.
func Update(ctx context.Context, base, next *graph.File) (*graph.File, *update.Metadata, []update.Warning, error) {
	return update.NewEngine().Update(ctx, base, next)
}

// RedactForScope produces a copy of a file safe for the target disclosure
// scope with a default redactor.
func RedactForScope(ctx context.Context, f *graph.File, scope graph.DisclosureScope) (*graph.File, *redact.Report, error) {
	return redact.NewRedactor().ForScope(ctx, f, scope)
}

// Client bundles configured engines for pipelines that run all three
// operations. Clients are safe for concurrent use.
type Client struct {
	merge  *merge.Engine
	update *update.Engine
	redact *redact.Redactor
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	cfg    *config.Config
	logger *slog.Logger
	tracer trace.TracerProvider
}

// WithConfig applies a loaded configuration to every engine.
func WithConfig(cfg *config.Config) Option {
	return func(c *clientConfig) { c.cfg = cfg }
}

// WithLogger sets the structured logger for every engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = logger }
}

// WithTracerProvider enables tracing on every engine.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *clientConfig) { c.tracer = tp }
}

// NewClient builds the engines from the given options.
func NewClient(opts ...Option) (*Client, error) {
	var cc clientConfig
	for _, opt := range opts {
		opt(&cc)
	}

	var mergeOpts []merge.Option
	var updateOpts []update.Option
	var redactOpts []redact.Option
	if cc.cfg != nil {
		mergeOpts = append(mergeOpts, cc.cfg.MergeOptions()...)
		updateOpts = append(updateOpts, cc.cfg.UpdateOptions()...)
		ro, err := cc.cfg.RedactOptions()
		if err != nil {
			return nil, err
		}
		redactOpts = append(redactOpts, ro...)
	}
	if cc.logger != nil {
		mergeOpts = append(mergeOpts, merge.WithLogger(cc.logger))
		updateOpts = append(updateOpts, update.WithLogger(cc.logger))
		redactOpts = append(redactOpts, redact.WithLogger(cc.logger))
	}
	if cc.tracer != nil {
		mergeOpts = append(mergeOpts, merge.WithTracerProvider(cc.tracer))
		updateOpts = append(updateOpts, update.WithTracerProvider(cc.tracer))
		redactOpts = append(redactOpts, redact.WithTracerProvider(cc.tracer))
	}

	return &Client{
		merge:  merge.NewEngine(mergeOpts...),
		update: update.NewEngine(updateOpts...),
		redact: redact.NewRedactor(redactOpts...),
	}, nil
}

// Merge runs the client's merge engine.
func (c *Client) Merge(ctx context.Context, files ...*graph.File) (*graph.File, *merge.Metadata, []resolve.Warning, error) {
	return c.merge.Merge(ctx, files...)
}

// Update runs the client's update engine.
func (c *Client) Update(ctx context.Context, base, next *graph.File) (*graph.File, *update.Metadata, []update.Warning, error) {
	return c.update.Update(ctx, base, next)
}

// RedactForScope runs the client's redactor.
func (c *Client) RedactForScope(ctx context.Context, f *graph.File, scope graph.DisclosureScope) (*graph.File, *redact.Report, error) {
	return c.redact.ForScope(ctx, f, scope)
}
