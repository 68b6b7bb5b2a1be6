// Package sealer implements the adaptive admission-control loop that
// decides when a PBFT validator proposes a block and how many
// transactions that block may carry. It is the core of a PBFT sealer;
// the PBFT voting protocol, block execution, the transaction pool,
// chain sync and persistence, signing, and transport are all external
// collaborators reached through the narrow interfaces below.
package sealer

// Hash is an opaque content hash; the sealer never inspects it, only
// threads it through header population. Signature schemes and the wire
// block format are out of scope here.
type Hash [32]byte

// Header is the minimal block header the sealer populates and reads
// back from its collaborators.
type Header struct {
	Number     uint64
	ParentHash Hash
	TxRoot     Hash
}

// Transaction is an opaque pool entry; the sealer only ever counts and
// orders these, never inspects their payload.
type Transaction struct {
	Hash Hash
}

// Block is an immutable, fully-assembled candidate or committed block.
type Block struct {
	Header Header
	Txs    []Transaction
}

// ChainView is a read-only adapter onto the committed chain head.
type ChainView interface {
	// Number returns the current committed block number.
	Number() uint64
	// HeaderByNumber returns the header of block n; used to populate a
	// new candidate's parent fields.
	HeaderByNumber(n uint64) Header
}

// SyncView is a read-only adapter exposing block-sync progress.
type SyncView interface {
	IsSyncing() bool
	HighestKnownNumber() uint64
}

// TxPool is the minimal read accessor the sealer needs from the
// transaction pool; transactions are drawn in the pool's published
// order.
type TxPool interface {
	// Pending returns up to max transactions in pool order. Returning
	// fewer than max is not an error; it simply yields a smaller block.
	Pending(max uint64) []Transaction
	// Empty reports whether the pool currently has no transactions,
	// feeding the generic "tx-pool nonempty" base sealing predicate.
	Empty() bool
}

// EngineHandle is the adapter to the PBFT engine. The core never
// blocks on it: GeneratePrepare is fire-and-forget, and consequences
// flow back later through OnTimeout/OnCommitBlock.
type EngineHandle interface {
	// MaxBlockTransactions is the engine's current hard ceiling; it may
	// change at any time via live reconfiguration.
	MaxBlockTransactions() uint64
	// ShouldSeal reports engine-side readiness (e.g. this node is the
	// current primary and within its sealing window).
	ShouldSeal() bool
	// GeneratePrepare submits a candidate for the PBFT prepare phase.
	// A returned error means submission itself failed (not that the
	// block was rejected); the loop logs and retries next tick.
	GeneratePrepare(block Block) error
	// ShouldReset is a synchronous, post-submission hint that the
	// candidate must be regenerated.
	ShouldReset(block Block) bool

	// OnTimeout registers cb to be invoked when the engine's
	// view-change timer expires. sealingTxNumber is the transaction
	// count of the block that was pending when the timeout fired (0 if
	// none was pending).
	OnTimeout(cb func(sealingTxNumber uint64))
	// OnCommitBlock registers cb to be invoked when a block commits.
	// changeCycle > 0 means the commit followed one or more view
	// changes.
	OnCommitBlock(cb func(blockNumber, sealingTxNumber uint64, changeCycle uint32))

	Start() error
	Stop() error
}

// StrategyHooks is the composition-based replacement for the source's
// base-sealer/derived-sealer inheritance: a PBFT-specific capability
// set plugged into the generic SealerLoop.
type StrategyHooks struct {
	// ShouldSealExtra is an additional readiness predicate ANDed into
	// the generic base predicate, for strategies that need more than
	// "running, pool nonempty, not syncing". Nil means "always ready".
	ShouldSealExtra func() bool

	// PostAssemble runs once per assembly, after the header is
	// populated and the hook point the source calls
	// hookAfterHandleBlock, before the transaction root is computed,
	// e.g. to append a system transaction. Nil is a no-op.
	PostAssemble func(*SealingBlock)
}
