package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zapcore"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/config"
)

func TestSetupWithoutEndpointOnlyInstallsPropagator(t *testing.T) {
	// Arrange
	cfg := &config.Config{ServiceName: "inventory-service", ServiceVersion: "1.0.0"}

	// Act
	shutdown, err := Setup(context.Background(), cfg)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewLoggerWithoutTelemetry(t *testing.T) {
	cfg := &config.Config{ServiceName: "products-service"}

	logger := NewLogger(cfg)

	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
