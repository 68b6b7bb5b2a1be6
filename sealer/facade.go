package sealer

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Arlen-Jiang/FISCO-BCOS/config"
	"github.com/Arlen-Jiang/FISCO-BCOS/log"
	"github.com/Arlen-Jiang/FISCO-BCOS/metrics"
)

// SealerFacade is the public surface the host process drives: lifecycle
// (Start/Stop), wiring of event callbacks, and the "should seal?"
// predicate composed with the engine's own readiness.
type SealerFacade struct {
	engine EngineHandle
	cap    *AdmissionController
	loop   *SealerLoop
	log    log.Logger

	running int32
	group   *errgroup.Group
}

// NewFacade wires a SealerFacade from its collaborators. hooks supplies
// the PBFT-specific strategy capability set; pass the zero value for
// default behavior.
func NewFacade(cfg config.Config, chain ChainView, syncView SyncView, pool TxPool, engine EngineHandle, hooks StrategyHooks, reg *metrics.Registry) (*SealerFacade, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = metrics.DefaultRegistry
	}

	f := &SealerFacade{
		engine: engine,
		log:    log.New("component", "sealerFacade"),
	}
	f.cap = NewAdmissionController(cfg, chain, syncView, engine, reg)
	f.loop = NewSealerLoop(chain, syncView, pool, engine, f.cap, hooks, f.isRunning, reg)
	return f, nil
}

func (f *SealerFacade) isRunning() bool { return atomic.LoadInt32(&f.running) == 1 }

// Start wires the admission controller's event callbacks, starts the
// engine, then starts the loop.
func (f *SealerFacade) Start() error {
	atomic.StoreInt32(&f.running, 1)
	f.cap.Start()

	if err := f.engine.Start(); err != nil {
		atomic.StoreInt32(&f.running, 0)
		return err
	}

	f.group = &errgroup.Group{}
	f.group.Go(func() error {
		f.loop.Run()
		return nil
	})
	f.log.Info("sealer started")
	return nil
}

// Stop stops the loop first, then the engine, and waits for the loop
// goroutine to exit before returning.
func (f *SealerFacade) Stop() error {
	atomic.StoreInt32(&f.running, 0)
	f.loop.Stop()
	if f.group != nil {
		_ = f.group.Wait()
	}
	err := f.engine.Stop()
	f.log.Info("sealer stopped")
	return err
}

// ShouldSeal reports whether the loop would currently attempt to seal.
func (f *SealerFacade) ShouldSeal() bool { return f.loop.ShouldSeal() }

// MaxBlockCanSeal returns the current per-block transaction cap.
func (f *SealerFacade) MaxBlockCanSeal() uint64 { return f.cap.Snapshot() }

// HookAfterHandleBlock is the default no-op extension point; callers
// who need it wire a real function into StrategyHooks.PostAssemble
// instead of overriding this method, since Go favors composition over
// subclass override hooks.
func HookAfterHandleBlock(*SealingBlock) {}
