package xmss

import (
	"runtime"
	"sync"
)

// scratchPad is a set of reusable buffers for the leaf-generation hot
// path (WOTS+ secret expansion, public-key chains, and the L-tree
// compression scratch), grounded on the teacher's own scratchPad in
// context.go - "used by a single goroutine to avoid memory allocation".
// A scratchPad must not be shared across goroutines; each of
// buildSubtreeRoot's worker goroutines owns exactly one.
type scratchPad struct {
	n       uint32
	wotsLen uint32

	seedBuf   []byte // n bytes: otsSeed output
	wotsBuf   []byte // n*wotsLen bytes: expanded WOTS+ secret/public key
	leafBuf   []byte // n bytes: the leaf produced by lTree
}

func newScratchPad(p *WOTSParams) *scratchPad {
	return &scratchPad{
		n:       p.N,
		wotsLen: p.Len,
		seedBuf: make([]byte, p.N),
		wotsBuf: make([]byte, p.N*p.Len),
		leafBuf: make([]byte, p.N),
	}
}

// genLeafScratch is genLeaf, but copies the OTS seed, the WOTS+ public
// key and the leaf into pad's buffers; the returned slice is pad.leafBuf
// and is overwritten by the next call. wotsPkGen and lTree still allocate
// their own intermediate slices. buildSubtreeRoot's workers call this once
// per leaf of every subtree wider than parallelLeafThreshold.
func genLeafScratch(fam HashFunction, p *WOTSParams, skSeed, pubSeed []byte, leaf uint32, pad *scratchPad) []byte {
	otsAddr := NewADRS(ADRSTypeOTS)
	otsAddr.SetOTSAddr(leaf)
	seed := prfUint64Into(fam, p.N, skSeed, uint64(leaf), pad.seedBuf)
	pk := wotsPkGenInto(fam, p, seed, pubSeed, otsAddr, pad.wotsBuf)

	lTreeAddr := NewADRS(ADRSTypeLTree)
	lTreeAddr.SetLTreeAddr(leaf)
	out := lTree(fam, p, pk, pubSeed, lTreeAddr)
	copy(pad.leafBuf, out)
	return pad.leafBuf
}

// parallelLeafThreshold is the subtree width at or below which
// buildSubtreeRoot just generates leaves on the calling goroutine - there the
// worker-pool bookkeeping costs more than it saves.
const parallelLeafThreshold = 64

// leafBatchSize is how many consecutive leaf indices one worker claims per
// trip to the shared counter, mirrored from the teacher's
// genSubTreeInto perBatch constant.
const leafBatchSize = 32

// BuildOptions configures the initial full-tree build, mirroring the
// teacher's Context.Threads field: a mutable per-call knob rather than a
// package-level constant, since different callers building different-sized
// trees may want different worker counts.
type BuildOptions struct {
	// Threads is the number of worker goroutines buildSubtreeRoot uses to
	// generate leaves in parallel during the initial tree build. 0 (the
	// zero value, and DefaultBuildOptions) means auto-detect via
	// runtime.NumCPU(), exactly like the teacher's "will guess an
	// appropriate number if set to 0".
	Threads int
}

// DefaultBuildOptions is the BuildOptions initializeTree and its callers
// use when the caller has no opinion on worker count.
var DefaultBuildOptions = BuildOptions{}

// resolveThreads turns a possibly-zero configured thread count into a
// concrete worker count, clamped to [1, width].
func resolveThreads(configured int, width uint32) int {
	threads := configured
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads < 1 {
		threads = 1
	}
	if uint32(threads) > width {
		threads = int(width)
	}
	return threads
}

// buildSubtreeRoot computes the root of the height-level subtree of
// consecutive leaves starting at startLeaf. For subtrees no wider than
// parallelLeafThreshold it defers to directSubtreeRoot; wider ones (the
// initial tree build's amortised levels, for large h) generate their
// leaves across a worker pool of scratchPad-owning goroutines before
// combining them bottom-up on the calling goroutine, grounded on the
// teacher's Context.genSubTreeInto Threads/perBatch shape - generalised
// from XMSS^MT's per-layer subtree fan-out (out of scope, see spec.md's
// Non-goals) to a single XMSS tree's own leaf range. opts.Threads
// mirrors the teacher's per-Context Threads field (0 means auto-detect).
func buildSubtreeRoot(fam HashFunction, p *WOTSParams, skSeed, pubSeed []byte, height, startLeaf uint32, opts BuildOptions) []byte {
	width := uint32(1) << height
	if width <= parallelLeafThreshold {
		return directSubtreeRoot(fam, p, skSeed, pubSeed, height, startLeaf)
	}

	leaves := make([][]byte, width)
	threads := resolveThreads(opts.Threads, width)

	var next uint32
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(threads)
	for t := 0; t < threads; t++ {
		go func() {
			defer wg.Done()
			pad := newScratchPad(p)
			for {
				mu.Lock()
				batchStart := next
				next += leafBatchSize
				mu.Unlock()
				if batchStart >= width {
					return
				}
				batchEnd := batchStart + leafBatchSize
				if batchEnd > width {
					batchEnd = width
				}
				for i := batchStart; i < batchEnd; i++ {
					leaf := genLeafScratch(fam, p, skSeed, pubSeed, startLeaf+i, pad)
					leaves[i] = append([]byte(nil), leaf...)
				}
			}
		}()
	}
	wg.Wait()

	nodes := make([]stackNode, width)
	for i := uint32(0); i < width; i++ {
		nodes[i] = stackNode{node: leaves[i], height: 0, index: startLeaf + i}
	}
	for len(nodes) > 1 {
		next := make([]stackNode, 0, len(nodes)/2)
		for i := 0; i < len(nodes); i += 2 {
			parentIdx := nodes[i].index >> 1
			combined := hashUp(fam, p.N, nodes[i].node, nodes[i+1].node, pubSeed, nodes[i].height, parentIdx)
			next = append(next, stackNode{node: combined, height: nodes[i].height + 1, index: parentIdx})
		}
		nodes = next
	}
	return nodes[0].node
}
