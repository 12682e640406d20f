package remote

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/inZane-Dev/microservicios--producto--inventario/internal/remote"

// Options configures a Client.
type Options struct {
	// Service names the partner; it appears in errors, logs and telemetry.
	Service      string
	BaseURL      string
	APIKeyHeader string
	APIKey       string
	Timeout      time.Duration
	Policy       RetryPolicy
	Logger       *zap.Logger
}

// Client performs credentialed, retried calls against one partner service.
type Client struct {
	service      string
	http         *resty.Client
	apiKeyHeader string
	apiKey       string
	policy       RetryPolicy
	logger       *zap.Logger
	tracer       trace.Tracer
	attempts     metric.Int64Counter
}

// NewClient creates a new Client for the partner described by opts.
func NewClient(opts Options) *Client {
	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	attempts, err := otel.Meter(instrumentationName).Int64Counter(
		"remote.call.attempts",
		metric.WithDescription("Outbound partner service call attempts by outcome"),
	)
	if err != nil {
		logger.Warn("remote call counter unavailable", zap.Error(err))
		attempts = noop.Int64Counter{}
	}

	return &Client{
		service:      opts.Service,
		http:         httpClient,
		apiKeyHeader: opts.APIKeyHeader,
		apiKey:       opts.APIKey,
		policy:       opts.Policy,
		logger:       logger.With(zap.String("partner", opts.Service)),
		tracer:       otel.Tracer(instrumentationName),
		attempts:     attempts,
	}
}

// Call performs one logical operation against the partner. send is invoked
// once per attempt with a fresh request that already carries the credential
// and trace headers. A failed call is always returned as *DependencyError.
func (c *Client) Call(ctx context.Context, operation string, send func(req *resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	ctx, span := c.tracer.Start(ctx, c.service+"."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var resp *resty.Response
	attempts, err := Retry(ctx, c.policy, IsRetryable,
		func(err error, attempt int) {
			c.logger.Warn("remote call failed, retrying",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Duration("delay", c.policy.Delay),
				zap.Error(err),
			)
		},
		func() error {
			r, err := send(c.newRequest(ctx))
			if err == nil && r.IsError() {
				err = &StatusError{StatusCode: r.StatusCode(), Body: r.String()}
			}
			c.record(ctx, operation, err)
			if err != nil {
				return err
			}
			resp = r
			return nil
		},
	)
	span.SetAttributes(attribute.Int("remote.attempts", attempts))

	if err != nil {
		depErr := &DependencyError{
			Service:    c.service,
			Operation:  operation,
			Attempts:   attempts,
			StatusCode: StatusCode(err),
			Cause:      err,
		}
		span.RecordError(depErr)
		span.SetStatus(codes.Error, "remote call failed")
		c.logger.Error("remote call exhausted",
			zap.String("operation", operation),
			zap.Int("attempts", attempts),
			zap.Int("status", depErr.StatusCode),
			zap.Error(err),
		)
		return nil, depErr
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return c.http.R().
		SetContext(ctx).
		SetHeaders(carrier).
		SetHeader(c.apiKeyHeader, c.apiKey)
}

func (c *Client) record(ctx context.Context, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", c.service),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
