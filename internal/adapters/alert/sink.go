// Package alert provides the server-side implementation of the alert
// signal. Clients play the actual notification sound; the server records
// that one batch of new notifications fired for an identifier.
package alert

import (
	"github.com/arakoo/atm/internal/domain/entities"
	"github.com/arakoo/atm/internal/infrastructure/logger"
)

// LoggingSink logs one line per alert batch.
type LoggingSink struct {
	logger *logger.Logger
}

// NewLoggingSink creates an alert sink backed by the application logger.
func NewLoggingSink(appLogger *logger.Logger) *LoggingSink {
	return &LoggingSink{logger: appLogger.WithComponent("alert")}
}

// Alert records a batch of newly issued notifications. Never blocks.
func (s *LoggingSink) Alert(identifier string, batch []entities.Notification) {
	ids := make([]string, len(batch))
	for i, n := range batch {
		ids[i] = n.Key.String()
	}
	s.logger.Infow("Alert batch issued", "identifier", identifier, "count", len(batch), "notifications", ids)
}
