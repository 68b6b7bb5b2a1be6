package sealer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Arlen-Jiang/FISCO-BCOS/config"
	"github.com/Arlen-Jiang/FISCO-BCOS/metrics"
)

func TestNewFacadeRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig
	cfg.BlockSizeIncreaseRatio = 0
	_, err := NewFacade(cfg, newFakeChain(), &fakeSync{}, &fakePool{}, newFakeEngine(10), StrategyHooks{}, metrics.NewRegistry())
	require.Error(t, err)
}

func TestFacadeStartStopLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	eng := newFakeEngine(10)
	pool := &fakePool{}
	f, err := NewFacade(config.DefaultConfig, newFakeChain(), &fakeSync{}, pool, eng, StrategyHooks{}, metrics.NewRegistry())
	require.NoError(t, err)

	require.NoError(t, f.Start())
	require.True(t, eng.started)

	require.NoError(t, f.Stop())
	require.True(t, eng.stopped)
}

func TestFacadeShouldSealAndMaxBlockCanSealPassThrough(t *testing.T) {
	defer goleak.VerifyNone(t)

	eng := newFakeEngine(10)
	pool := &fakePool{}
	f, err := NewFacade(config.DefaultConfig, newFakeChain(), &fakeSync{}, pool, eng, StrategyHooks{}, metrics.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, f.Start())
	defer f.Stop()

	require.False(t, f.ShouldSeal(), "empty pool must block sealing")
	require.Equal(t, uint64(10), f.MaxBlockCanSeal())

	pool.SetSize(2)
	time.Sleep(5 * time.Millisecond)
	require.True(t, f.ShouldSeal())
}

func TestFacadeStartRollsBackRunningFlagOnEngineError(t *testing.T) {
	eng := &erroringStartEngine{fakeEngine: newFakeEngine(10)}
	pool := &fakePool{}
	f, err := NewFacade(config.DefaultConfig, newFakeChain(), &fakeSync{}, pool, eng, StrategyHooks{}, metrics.NewRegistry())
	require.NoError(t, err)

	err = f.Start()
	require.Error(t, err)
	require.False(t, f.isRunning())
}

type erroringStartEngine struct {
	*fakeEngine
}

var errEngineStartFailed = errors.New("engine failed to start")

func (e *erroringStartEngine) Start() error { return errEngineStartFailed }
