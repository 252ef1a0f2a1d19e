package compose

import "go.uber.org/zap"

var logger = zap.NewNop()

// SetLogger routes composition diagnostics to l. Passing nil restores the
// no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
