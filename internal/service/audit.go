package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"ledger-api/internal/metrics"
)

// PositionAuditor looks for positions that broke the non-negative quantity rule.
type PositionAuditor struct {
	finder  NegativePositionFinder
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

func NewPositionAuditor(finder NegativePositionFinder, m *metrics.Metrics, logger *logrus.Logger) *PositionAuditor {
	return &PositionAuditor{
		finder:  finder,
		metrics: m,
		logger:  logger,
	}
}

// Run returns the number of violations found and publishes it to the gauge.
func (a *PositionAuditor) Run(ctx context.Context) (int, error) {
	positions, err := a.finder.FindNegativePositions(ctx)
	if err != nil {
		a.logger.WithError(err).Error("Position audit failed")
		return 0, fmt.Errorf("find negative positions: %w", err)
	}

	for _, p := range positions {
		a.logger.WithFields(logrus.Fields{
			"account_id": p.AccountID,
			"asset_id":   p.AssetID,
			"quantity":   p.Quantity.String(),
		}).Error("Negative asset position")
	}

	a.metrics.SetNegativePositions(len(positions))
	a.logger.WithField("violations", len(positions)).Info("Position audit completed")
	return len(positions), nil
}
