package observability

import (
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/config"
)

// NewLogger builds the service logger. Entries always go to stdout as JSON;
// with telemetry enabled they are also forwarded through the OTel log bridge,
// so Setup must run first.
func NewLogger(cfg *config.Config) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		zap.InfoLevel,
	)

	if cfg.TelemetryEnabled() {
		bridge := otelzap.NewCore(cfg.ServiceName,
			otelzap.WithLoggerProvider(global.GetLoggerProvider()),
		)
		core = zapcore.NewTee(bridge, core)
	}

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service.name", cfg.ServiceName)),
	)
}
