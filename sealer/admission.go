package sealer

import (
	"sync"

	"github.com/Arlen-Jiang/FISCO-BCOS/config"
	"github.com/Arlen-Jiang/FISCO-BCOS/log"
	"github.com/Arlen-Jiang/FISCO-BCOS/metrics"
)

// admissionMetrics mirrors go-ethereum's pattern of a handful of
// package-level registered gauges/counters sitting next to the code
// that updates them (see miner/worker.go's txConditionalRejectedCounter).
type admissionMetrics struct {
	maxBlockCanSeal *metrics.Gauge
	lastTimeoutTx   *metrics.Gauge
	maxNoTimeoutTx  *metrics.Gauge
	timeoutCount    *metrics.Gauge
	halvings        *metrics.Counter
	growths         *metrics.Counter
}

func newAdmissionMetrics(reg *metrics.Registry) admissionMetrics {
	return admissionMetrics{
		maxBlockCanSeal: metrics.NewRegisteredGauge("sealer/maxBlockCanSeal", "current per-block transaction cap", reg),
		lastTimeoutTx:   metrics.NewRegisteredGauge("sealer/lastTimeoutTx", "smallest tx count observed to time out", reg),
		maxNoTimeoutTx:  metrics.NewRegisteredGauge("sealer/maxNoTimeoutTx", "largest tx count observed to commit cleanly", reg),
		timeoutCount:    metrics.NewRegisteredGauge("sealer/timeoutCount", "unresolved timeout count", reg),
		halvings:        metrics.NewRegisteredCounter("sealer/capHalvings", "number of times the cap was halved on timeout", reg),
		growths:         metrics.NewRegisteredCounter("sealer/capGrowths", "number of times the cap was grown on clean commit", reg),
	}
}

// AdmissionController owns the cap state and reacts to
// OnTimeout/OnCommitBlock to keep maxBlockCanSeal as large as possible
// without tripping PBFT view changes. It is ported line-for-line from
// FISCO-BCOS's PBFTSealer::onTimeout/onCommitBlock/attempIncreaseTimeoutTx/
// increaseMaxTxsCanSeal (see DESIGN.md).
type AdmissionController struct {
	cfg    config.Config
	chain  ChainView
	sync   SyncView
	engine EngineHandle
	log    log.Logger
	m      admissionMetrics

	mu sync.RWMutex // guards the fields below

	maxBlockCanSeal uint64
	lastTimeoutTx   uint64
	maxNoTimeoutTx  uint64
	timeoutCount    uint64
	lastBlockNumber uint64

	// changed is a capacity-1 notify channel, non-blocking to send on;
	// the loop receives from it to wake up and recheck the cap.
	changed chan struct{}
}

// NewAdmissionController constructs a controller whose cap starts at
// the engine's current ceiling (the initial "Saturated" state).
func NewAdmissionController(cfg config.Config, chain ChainView, sync SyncView, engine EngineHandle, reg *metrics.Registry) *AdmissionController {
	return &AdmissionController{
		cfg:             cfg,
		chain:           chain,
		sync:            sync,
		engine:          engine,
		log:             log.New("component", "admission"),
		m:               newAdmissionMetrics(reg),
		maxBlockCanSeal: engine.MaxBlockTransactions(),
		changed:         make(chan struct{}, 1),
	}
}

// Start wires the engine's event callbacks (only when dynamic sizing is
// enabled) and records the current chain head, mirroring
// PBFTSealer::start.
func (c *AdmissionController) Start() {
	if c.cfg.EnableDynamicBlockSize {
		c.engine.OnTimeout(c.OnTimeout)
		c.engine.OnCommitBlock(c.OnCommitBlock)
	}
	c.mu.Lock()
	c.lastBlockNumber = c.chain.Number()
	c.mu.Unlock()
}

// Changed returns the channel that fires after a state transition (and
// after the loop drops a candidate), so the loop can wake promptly
// instead of polling. Notifications sent before the value is received
// collapse into one.
func (c *AdmissionController) Changed() <-chan struct{} { return c.changed }

func (c *AdmissionController) notifyChanged() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// Snapshot returns the cap to assemble against. When dynamic sizing is
// disabled, the cap state is inert and the cap tracks the engine
// ceiling directly.
func (c *AdmissionController) Snapshot() uint64 {
	if !c.cfg.EnableDynamicBlockSize {
		return c.engine.MaxBlockTransactions()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxBlockCanSeal
}

// reclampToCeiling re-pins maxBlockCanSeal to ceiling if it has drifted
// at or above it, e.g. because the engine lowered its ceiling via live
// reconfiguration since the last update. Caller must hold the write lock.
func (c *AdmissionController) reclampToCeiling(ceiling uint64) {
	if c.maxBlockCanSeal >= ceiling {
		c.maxBlockCanSeal = ceiling
	}
}

// OnTimeout reacts to a PBFT view-change timeout by halving the cap and
// recording the smallest transaction count observed to time out.
func (c *AdmissionController) OnTimeout(sealingTxNumber uint64) {
	if !c.cfg.EnableDynamicBlockSize {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ceiling := c.engine.MaxBlockTransactions()
	c.reclampToCeiling(ceiling)

	if c.sync.IsSyncing() {
		c.lastBlockNumber = c.sync.HighestKnownNumber()
	}

	c.timeoutCount++

	if sealingTxNumber > 0 &&
		(c.lastTimeoutTx == 0 ||
			(c.lastTimeoutTx > sealingTxNumber && sealingTxNumber > c.maxNoTimeoutTx)) {
		c.lastTimeoutTx = sealingTxNumber
	}

	prev := c.maxBlockCanSeal
	if c.maxBlockCanSeal > 2 {
		c.maxBlockCanSeal /= 2
		c.m.halvings.Inc()
	}

	c.log.Info("decrease maxBlockCanSeal for PBFT timeout",
		"orgMaxBlockCanSeal", prev, "halvedMaxBlockCanSeal", c.maxBlockCanSeal,
		"timeoutCount", c.timeoutCount, "lastTimeoutTx", c.lastTimeoutTx)

	c.updateMetricsLocked()
	c.notifyChanged()
}

// OnCommitBlock reacts to a committed block by burning down any
// outstanding timeout penalty, or else growing the cap on a clean
// commit.
func (c *AdmissionController) OnCommitBlock(blockNumber, sealingTxNumber uint64, changeCycle uint32) {
	if !c.cfg.EnableDynamicBlockSize {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ceiling := c.engine.MaxBlockTransactions()
	c.reclampToCeiling(ceiling)

	if c.sync.IsSyncing() || changeCycle > 0 {
		c.lastBlockNumber = c.sync.HighestKnownNumber()
		c.updateMetricsLocked()
		c.notifyChanged()
		return
	}

	if blockNumber <= c.lastBlockNumber {
		return
	}
	c.lastBlockNumber = c.chain.Number()

	if c.timeoutCount > 0 {
		c.timeoutCount--
		c.updateMetricsLocked()
		c.notifyChanged()
		return
	}

	if sealingTxNumber > 0 && (c.maxNoTimeoutTx == 0 || c.maxNoTimeoutTx < sealingTxNumber) {
		c.maxNoTimeoutTx = sealingTxNumber
		c.log.Info("increase maxNoTimeoutTx", "maxNoTimeoutTx", c.maxNoTimeoutTx)
	}

	if c.maxBlockCanSeal >= ceiling {
		c.maxBlockCanSeal = ceiling
		c.updateMetricsLocked()
		c.notifyChanged()
		return
	}

	if c.lastTimeoutTx <= c.maxNoTimeoutTx {
		c.attemptIncreaseTimeoutTx(ceiling)
	}

	if c.lastTimeoutTx != 0 && c.maxBlockCanSeal >= c.lastTimeoutTx {
		c.updateMetricsLocked()
		c.notifyChanged()
		return
	}

	c.growMaxBlockCanSeal(ceiling)
	c.updateMetricsLocked()
	c.notifyChanged()
}

// attemptIncreaseTimeoutTx nudges lastTimeoutTx upward toward ceiling
// after a clean commit suggests the prior timeout threshold was too
// conservative. Caller holds the write lock.
func (c *AdmissionController) attemptIncreaseTimeoutTx(ceiling uint64) {
	if c.lastTimeoutTx >= ceiling {
		c.lastTimeoutTx = ceiling
		return
	}
	if c.maxNoTimeoutTx == ceiling {
		c.lastTimeoutTx = c.maxNoTimeoutTx
		return
	}
	if float64(c.maxNoTimeoutTx)*0.1 > 1 {
		c.lastTimeoutTx = uint64(float64(c.maxNoTimeoutTx) * 1.1)
	} else {
		c.lastTimeoutTx *= 2
	}
	if c.lastTimeoutTx >= ceiling {
		c.lastTimeoutTx = ceiling
	}
	c.log.Info("attemptIncreaseTimeoutTx", "updatedLastTimeoutTx", c.lastTimeoutTx)
}

// growMaxBlockCanSeal grows the cap by the configured ratio, clamped so
// it never exceeds lastTimeoutTx or drops below maxNoTimeoutTx. Caller
// holds the write lock.
func (c *AdmissionController) growMaxBlockCanSeal(ceiling uint64) {
	if c.cfg.BlockSizeIncreaseRatio*float64(c.maxBlockCanSeal) > 1 {
		c.maxBlockCanSeal += uint64(c.cfg.BlockSizeIncreaseRatio * float64(c.maxBlockCanSeal))
	} else {
		c.maxBlockCanSeal++
	}
	if c.lastTimeoutTx > 0 {
		c.maxBlockCanSeal = minOf(c.maxBlockCanSeal, c.lastTimeoutTx)
	}
	if c.maxNoTimeoutTx > 0 {
		c.maxBlockCanSeal = maxOf(c.maxBlockCanSeal, c.maxNoTimeoutTx)
	}
	c.maxBlockCanSeal = clampBetween(c.maxBlockCanSeal, 1, ceiling)
	c.m.growths.Inc()
	c.log.Info("increase maxBlockCanSeal", "maxBlockCanSeal", c.maxBlockCanSeal)
}

// updateMetricsLocked pushes the current state to the registered
// gauges. Caller holds at least the read lock.
func (c *AdmissionController) updateMetricsLocked() {
	c.m.maxBlockCanSeal.Update(float64(c.maxBlockCanSeal))
	c.m.lastTimeoutTx.Update(float64(c.lastTimeoutTx))
	c.m.maxNoTimeoutTx.Update(float64(c.maxNoTimeoutTx))
	c.m.timeoutCount.Update(float64(c.timeoutCount))
}
