package sealer

// SealingBlock is the scratch candidate assembled by the SealerLoop. It
// is owned exclusively by the loop; event handlers never touch it.
type SealingBlock struct {
	header Header
	txs    []Transaction

	// resetSignal wakes anyone waiting for a fresh assembly attempt
	// after a drop-and-reset, implemented as a non-blocking notify
	// channel rather than sync.Cond.
	resetSignal chan struct{}
}

// NewSealingBlock returns an empty candidate, as at sealer startup.
func NewSealingBlock() *SealingBlock {
	return &SealingBlock{resetSignal: make(chan struct{}, 1)}
}

// PopulateFromParent sets the header fields from the committed parent.
func (b *SealingBlock) PopulateFromParent(parent Header) {
	b.header = Header{
		Number:     parent.Number + 1,
		ParentHash: parentHash(parent),
	}
}

// parentHash derives the linking hash from the parent header. The wire
// block format and hashing scheme are out of scope here; this exists
// only so Header.ParentHash is populated with *something* deterministic
// for tests and downstream logging.
func parentHash(parent Header) Hash {
	return parent.TxRoot
}

// Fill replaces the candidate's transactions with up to max
// transactions drawn from pool, in the pool's published order.
func (b *SealingBlock) Fill(pool TxPool, max uint64) {
	b.txs = pool.Pending(max)
}

// Len reports the number of transactions currently in the candidate.
func (b *SealingBlock) Len() int { return len(b.txs) }

// ComputeTxRoot finalizes the transaction root after the post-assembly
// hook has run.
func (b *SealingBlock) ComputeTxRoot() {
	var root Hash
	for i, tx := range b.txs {
		for j := range root {
			root[j] ^= tx.Hash[j] ^ byte(i)
		}
	}
	b.header.TxRoot = root
}

// Block snapshots the candidate as an immutable Block for submission.
func (b *SealingBlock) Block() Block {
	txs := make([]Transaction, len(b.txs))
	copy(txs, b.txs)
	return Block{Header: b.header, Txs: txs}
}

// Header returns the candidate's current header.
func (b *SealingBlock) Header() Header { return b.header }

// Reset drops the candidate and signals any waiter that a fresh
// assembly attempt may begin.
func (b *SealingBlock) Reset() {
	b.header = Header{}
	b.txs = nil
	select {
	case b.resetSignal <- struct{}{}:
	default:
	}
}

// ResetNotify returns the channel that fires after Reset; resets made
// before the value is received collapse into one notification.
func (b *SealingBlock) ResetNotify() <-chan struct{} { return b.resetSignal }
