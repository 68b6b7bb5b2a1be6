package sealer

import (
	"time"

	"github.com/google/uuid"

	"github.com/Arlen-Jiang/FISCO-BCOS/log"
	"github.com/Arlen-Jiang/FISCO-BCOS/metrics"
)

// idlePollInterval is how often the loop rechecks ShouldSeal, both while
// ineligible to seal and after each sealing attempt. It reuses the 50ms
// value of miner/worker.go's newWorkLoop backoff; there is no slower
// second interval.
const idlePollInterval = 50 * time.Millisecond

// loopMetrics are the sealing-attempt counters the loop updates.
type loopMetrics struct {
	sealed  *metrics.Counter
	dropped *metrics.Counter
}

func newLoopMetrics(reg *metrics.Registry) loopMetrics {
	return loopMetrics{
		sealed:  metrics.NewRegisteredCounter("sealer/blocksSealed", "candidates successfully submitted to the engine", reg),
		dropped: metrics.NewRegisteredCounter("sealer/blocksDropped", "candidates dropped before submission", reg),
	}
}

// SealerLoop is the worker that, while running, waits for "should
// seal?" to become true, assembles a block respecting the current cap,
// submits it to the engine, and recycles the buffer.
type SealerLoop struct {
	chain   ChainView
	sync    SyncView
	pool    TxPool
	engine  EngineHandle
	cap     *AdmissionController
	hooks   StrategyHooks
	log     log.Logger
	m       loopMetrics
	running func() bool

	block  *SealingBlock
	stopCh chan struct{}
}

// NewSealerLoop wires the loop's collaborators. running reports whether
// the host sealer is generically running; it is typically a closure
// over an atomic flag the facade flips in Start/Stop.
func NewSealerLoop(chain ChainView, sync SyncView, pool TxPool, engine EngineHandle, cap *AdmissionController, hooks StrategyHooks, running func() bool, reg *metrics.Registry) *SealerLoop {
	return &SealerLoop{
		chain:   chain,
		sync:    sync,
		pool:    pool,
		engine:  engine,
		cap:     cap,
		hooks:   hooks,
		running: running,
		log:     log.New("component", "sealerLoop"),
		m:       newLoopMetrics(reg),
		block:   NewSealingBlock(),
		stopCh:  make(chan struct{}),
	}
}

// ShouldSeal is the generic base predicate (node running, not syncing,
// pool nonempty, an optional strategy hook) ANDed with the engine's own
// readiness.
func (l *SealerLoop) ShouldSeal() bool {
	if !l.running() {
		return false
	}
	if l.sync.IsSyncing() {
		return false
	}
	if l.pool.Empty() {
		return false
	}
	if l.hooks.ShouldSealExtra != nil && !l.hooks.ShouldSealExtra() {
		return false
	}
	return l.engine.ShouldSeal()
}

// Run executes the polling loop until Stop is called. It is meant to be
// launched on its own goroutine (see SealerFacade.Start).
func (l *SealerLoop) Run() {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-timer.C:
		case <-l.cap.Changed():
		case <-l.block.ResetNotify():
		}

		if !l.ShouldSeal() {
			timer.Reset(idlePollInterval)
			continue
		}

		l.runOnce()
		timer.Reset(idlePollInterval)
	}
}

// Stop signals the loop to exit after its current assembly completes;
// nothing partially submitted survives a stop.
func (l *SealerLoop) Stop() { close(l.stopCh) }

// runOnce populates a candidate from the parent header, checks it
// against the current cap and the live engine ceiling, finalizes and
// submits it, and handles the engine's synchronous reset hint.
func (l *SealerLoop) runOnce() {
	attempt := uuid.NewString()

	parent := l.chain.HeaderByNumber(l.chain.Number())
	l.block.PopulateFromParent(parent)

	cap := l.cap.Snapshot()
	l.block.Fill(l.pool, cap)

	ceiling := l.engine.MaxBlockTransactions()
	if uint64(l.block.Len()) > ceiling {
		l.log.Info("drop candidate: transaction count exceeds engine ceiling",
			"attempt", attempt, "txCount", l.block.Len(), "ceiling", ceiling)
		l.m.dropped.Inc()
		l.block.Reset()
		l.cap.notifyChanged()
		return
	}

	if l.hooks.PostAssemble != nil {
		l.hooks.PostAssemble(l.block)
	}
	l.block.ComputeTxRoot()

	candidate := l.block.Block()
	l.log.Info("generating seal",
		"attempt", attempt, "number", candidate.Header.Number, "txCount", len(candidate.Txs))

	if err := l.engine.GeneratePrepare(candidate); err != nil {
		l.log.Error("submission to engine failed, will retry next tick", "attempt", attempt, "err", err)
		return
	}
	l.m.sealed.Inc()

	if l.engine.ShouldReset(candidate) {
		l.log.Info("engine requested regeneration", "attempt", attempt)
		l.block.Reset()
	}
}
