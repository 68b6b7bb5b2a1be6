package sealer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Arlen-Jiang/FISCO-BCOS/config"
	"github.com/Arlen-Jiang/FISCO-BCOS/metrics"
)

func alwaysRunning() bool { return true }

func newTestLoop(t *testing.T, hooks StrategyHooks) (*SealerLoop, *fakeChain, *fakeSync, *fakePool, *fakeEngine, *AdmissionController) {
	t.Helper()
	chain := newFakeChain()
	sv := &fakeSync{}
	pool := &fakePool{}
	eng := newFakeEngine(10)
	reg := metrics.NewRegistry()
	cap := NewAdmissionController(config.DefaultConfig, chain, sv, eng, reg)
	cap.Start()
	loop := NewSealerLoop(chain, sv, pool, eng, cap, hooks, alwaysRunning, reg)
	return loop, chain, sv, pool, eng, cap
}

func TestShouldSealRequiresRunningPoolAndEngine(t *testing.T) {
	loop, _, _, pool, eng, _ := newTestLoop(t, StrategyHooks{})

	require.False(t, loop.ShouldSeal(), "empty pool must block sealing")

	pool.SetSize(3)
	require.True(t, loop.ShouldSeal())

	eng.SetShouldSeal(false)
	require.False(t, loop.ShouldSeal(), "engine readiness must gate sealing")
}

func TestShouldSealBlocksWhileSyncing(t *testing.T) {
	loop, _, sv, pool, _, _ := newTestLoop(t, StrategyHooks{})
	pool.SetSize(3)
	require.True(t, loop.ShouldSeal())

	sv.SetSyncing(true, 100)
	require.False(t, loop.ShouldSeal(), "a syncing node must never be ready to seal")

	sv.SetSyncing(false, 100)
	require.True(t, loop.ShouldSeal())
}

func TestShouldSealHonorsExtraHook(t *testing.T) {
	gate := false
	loop, _, _, pool, _, _ := newTestLoop(t, StrategyHooks{ShouldSealExtra: func() bool { return gate }})
	pool.SetSize(1)

	require.False(t, loop.ShouldSeal())
	gate = true
	require.True(t, loop.ShouldSeal())
}

func TestRunOnceSubmitsCandidateWithinCeiling(t *testing.T) {
	loop, chain, _, pool, eng, _ := newTestLoop(t, StrategyHooks{})
	chain.SetNumber(1)
	pool.SetSize(5)

	loop.runOnce()

	require.Equal(t, 1, eng.PreparedCount())
	require.Equal(t, 5, loop.block.Len(), "the scratch block stays populated with what was just submitted, not yet reset")
}

func TestRunOnceDropsOversizedCandidateWithoutSubmitting(t *testing.T) {
	loop, chain, _, pool, eng, cap := newTestLoop(t, StrategyHooks{})
	chain.SetNumber(1)
	pool.SetSize(20)
	eng.SetCeiling(5)
	cap.mu.Lock()
	cap.maxBlockCanSeal = 20
	cap.mu.Unlock()

	loop.runOnce()

	require.Equal(t, 0, eng.PreparedCount(), "an oversized candidate must never reach GeneratePrepare")
	require.Equal(t, 0, loop.block.Len(), "the dropped candidate must be reset")

	select {
	case <-cap.Changed():
	default:
		t.Fatal("dropping an oversized candidate must also wake anyone waiting on the cap")
	}
}

func TestRunOnceHonorsPostAssembleHookBeforeTxRoot(t *testing.T) {
	var sawLen int
	hooks := StrategyHooks{PostAssemble: func(b *SealingBlock) { sawLen = b.Len() }}
	loop, chain, _, pool, _, _ := newTestLoop(t, hooks)
	chain.SetNumber(1)
	pool.SetSize(4)

	loop.runOnce()

	require.Equal(t, 4, sawLen)
}

func TestRunOnceResetsWhenEngineRequestsRegeneration(t *testing.T) {
	loop, chain, _, pool, eng, _ := newTestLoop(t, StrategyHooks{})
	chain.SetNumber(1)
	pool.SetSize(2)
	eng.resetNext = true

	loop.runOnce()

	require.Equal(t, 1, eng.PreparedCount())
	require.Equal(t, 0, loop.block.Len())
}

func TestRunStopsCleanlyWithoutLeakingGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	loop, _, _, pool, _, _ := newTestLoop(t, StrategyHooks{})
	pool.SetSize(1)

	done := make(chan struct{})
	go func() {
		loop.Run()
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	loop.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
