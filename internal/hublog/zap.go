package hublog

import "go.uber.org/zap"

// ZapLogger adapts go.uber.org/zap to Logger, selectable via config for
// deployments that already ship zap-formatted log aggregation.
type ZapLogger struct {
	logger *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

// NewZap builds a ZapLogger from a production zap configuration.
func NewZap() (*ZapLogger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{logger: logger.Sugar()}, nil
}

func (l *ZapLogger) Info(msg string, args ...any)  { l.logger.Infow(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.logger.Warnw(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.logger.Errorw(msg, args...) }
func (l *ZapLogger) Debug(msg string, args ...any) { l.logger.Debugw(msg, args...) }

func (l *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{logger: l.logger.With(args...)}
}
