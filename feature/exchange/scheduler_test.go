package exchange

import (
	"context"
	"testing"
	"time"

	"ynab-exchange/core/reconcile"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestScheduler_Disabled(t *testing.T) {
	runner := &stubRunner{}
	svc, _ := newTestService(runner, nil)

	NewScheduler(svc, 0, zap.NewNop()).Start(context.Background())
	assert.Empty(t, runner.runs)
}

func TestScheduler_RunsImmediately(t *testing.T) {
	runner := &stubRunner{}
	svc, _ := newTestService(runner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewScheduler(svc, time.Hour, zap.NewNop()).Start(ctx)
	assert.Equal(t, []string{"budget-cad", "budget-usd"}, runner.runs)
}

func TestScheduler_LeaseHeldIsNotAFailure(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	runner := &stubRunner{errs: map[string]error{"budget-cad": reconcile.ErrLeaseHeld}}
	svc, _ := newTestService(runner, nil)

	NewScheduler(svc, time.Hour, zap.New(core)).tick(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("Skipping scheduled pass, a pass is already running").Len())
	assert.Zero(t, logs.FilterMessage("Scheduled pass failed").Len())
}

func TestScheduler_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	runner := &stubRunner{errs: map[string]error{"budget-usd": reconcile.ErrMirrorAccountMissing}}
	svc, _ := newTestService(runner, nil)

	NewScheduler(svc, time.Hour, zap.New(core)).tick(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("Scheduled pass failed").Len())
}
