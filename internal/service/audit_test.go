package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-api/internal/metrics"
	"ledger-api/internal/model"
	"ledger-api/internal/repository/memory"
)

type failingFinder struct{}

func (failingFinder) FindNegativePositions(context.Context) ([]model.Position, error) {
	return nil, errors.New("query timeout")
}

func TestPositionAuditor(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAssetStore()
	m := metrics.New()
	auditor := NewPositionAuditor(store, m, newTestLogger())

	n, err := auditor.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, store.Save(ctx, &model.Position{AccountID: "a1", AssetID: "BTC", Quantity: qty("-1")}))

	n, err = auditor.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expected := `
# HELP ledger_negative_positions Asset positions found below zero by the last audit.
# TYPE ledger_negative_positions gauge
ledger_negative_positions 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "ledger_negative_positions"))
}

func TestPositionAuditorFailure(t *testing.T) {
	auditor := NewPositionAuditor(failingFinder{}, nil, newTestLogger())

	_, err := auditor.Run(context.Background())
	assert.Error(t, err)
}
