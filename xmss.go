package xmss

import (
	"bytes"
	"encoding/binary"
)

// N is the security parameter (hash output length in bytes, and WOTS+
// chain-value width) every QRL profile this core targets uses, per
// spec.md §9 ("n=32 in all QRL profiles").
const N uint32 = 32

// wotsW is the Winternitz parameter every QRL profile uses.
const wotsW uint32 = 16

// SigTypeXMSS is the signatureType nibble this core stamps into
// descriptors it originates itself, per spec.md §3
// ("signatureType ∈ {XMSS=1,…}"). Descriptors decoded from bytes the
// caller supplies keep whatever raw nibble they carry - see
// QRLDescriptor.SignatureType and DESIGN.md's open-question decision.
const SigTypeXMSS uint8 = 1

// SeedSize is the length in bytes of the raw seed initializeTree and
// newXMSSFromSeed ingest, per spec.md §4.6.
const SeedSize = 48

// deriveSeeds expands a 48-byte seed into the three n-byte secrets used to
// build an XMSS key - SK_SEED, SK_PRF and PUB_SEED, in that order - via
// SHAKE256(seed) squeezed to 3n bytes. Seed ingest always uses SHAKE-256, independent of the tree's own
// descriptor hashFunction: it is a fixed convention, not a per-tree choice
// (DESIGN.md open-question decision 3).
func deriveSeeds(seed []byte, n uint32) (skSeed, skPRF, pubSeed []byte, err Error) {
	if uint32(len(seed)) != SeedSize {
		return nil, nil, nil, newParameterError("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	out := coreHash(HashSHAKE_256, 3*n, seed)
	skSeed = out[:n]
	skPRF = out[n : 2*n]
	pubSeed = out[2*n : 3*n]
	return skSeed, skPRF, pubSeed, nil
}

// defaultBDSK picks the BDS retain parameter k for a tree of the given
// height when the caller doesn't supply one - the API surface's
// newXMSSFromSeed/newXMSSFromExtendedSeed/newXMSSFromHeight take no k
// argument, per spec.md §6. k=2 is the value QRL's own profiles use
// whenever the height leaves h-k even (h>2); shorter or odd-height trees
// fall back to k=0, which is always valid whenever h itself is even.
func defaultBDSK(h uint32) uint32 {
	if h > 2 && (h-2)%2 == 0 {
		return 2
	}
	return 0
}

// XMSSTree is a single stateful XMSS keypair: the derived secrets, the
// Merkle root, and the BDS traversal state that advances by one leaf per
// signature, per spec.md §3's XMSSTree entity.
type XMSSTree struct {
	params *XMSSParams
	desc   QRLDescriptor

	skSeed  []byte
	skPRF   []byte
	pubSeed []byte
	root    []byte

	idx uint32
	bds *bdsState
}

// initializeTree runs the initial BDS tree build for desc and a 48-byte
// seed, producing a fresh XMSSTree with idx=0 and an authentication path
// already populated for leaf 0, per spec.md §4.6. opts controls the worker
// count buildSubtreeRoot uses for this one-time leaf generation pass.
func initializeTree(desc QRLDescriptor, seed []byte, opts BuildOptions) (*XMSSTree, Error) {
	wp, err := NewWOTSParams(N, wotsW)
	if err != nil {
		return nil, err
	}
	k := defaultBDSK(desc.Height)
	xp, err := NewXMSSParams(N, desc.Height, wotsW, k)
	if err != nil {
		return nil, err
	}

	skSeed, skPRF, pubSeed, err := deriveSeeds(seed, N)
	if err != nil {
		return nil, err
	}

	bds, root := buildBDS(desc.HashFunction, wp, skSeed, pubSeed, xp.H, xp.K, opts)

	return &XMSSTree{
		params:  xp,
		desc:    desc,
		skSeed:  skSeed,
		skPRF:   skPRF,
		pubSeed: pubSeed,
		root:    root,
		idx:     0,
		bds:     bds,
	}, nil
}

// newXMSSFromSeed derives a fresh XMSSTree from a 48-byte seed, stamping a
// descriptor with this core's own canonical signatureType, per spec.md §6.
func newXMSSFromSeed(seed []byte, height uint32, fam HashFunction, addrFormatType uint8, opts BuildOptions) (*XMSSTree, Error) {
	desc := QRLDescriptor{
		HashFunction:   fam,
		SignatureType:  SigTypeXMSS,
		Height:         height,
		AddrFormatType: addrFormatType,
	}
	return initializeTree(desc, seed, opts)
}

// newXMSSFromExtendedSeed rebuilds an XMSSTree from the packed
// desc(3) || seed(48) wire form, reading the descriptor - including
// whatever raw hashFunction/signatureType nibbles it carries - from the
// first three bytes, per spec.md §6.
func newXMSSFromExtendedSeed(extendedSeed []byte, opts BuildOptions) (*XMSSTree, Error) {
	desc, seed, err := UnpackExtendedSeed(extendedSeed)
	if err != nil {
		return nil, err
	}
	return initializeTree(desc, seed, opts)
}

// RandFunc supplies cryptographically secure random bytes into buf. The
// caller owns the quality of the randomness; this package only calls it
// once, to seed a fresh key, per spec.md §5's injected-randomness
// collaborator.
type RandFunc func(buf []byte) error

// newXMSSFromHeight derives a fresh XMSSTree from randFunc-supplied
// entropy, defaulting to the SHA_256 address format (the only one
// GetXMSSAddressFromPK supports), per spec.md §6.
func newXMSSFromHeight(height uint32, fam HashFunction, randFunc RandFunc, opts BuildOptions) (*XMSSTree, Error) {
	seed := make([]byte, SeedSize)
	if err := randFunc(seed); err != nil {
		return nil, wrapError(ErrParameter, err, "xmss: failed to read random seed")
	}
	return newXMSSFromSeed(seed, height, fam, AddrFormatSHA256, opts)
}

// Descriptor returns the tree's QRL descriptor.
func (t *XMSSTree) Descriptor() QRLDescriptor { return t.desc }

// Index returns the leaf index the next Sign call will consume.
func (t *XMSSTree) Index() uint32 { return t.idx }

// SignatureSize returns the size in bytes of one signature this tree
// produces.
func (t *XMSSTree) SignatureSize() uint32 { return GetSignatureSize(t.params) }

// RemainingSignatures returns how many signatures this tree can still
// produce before Sign starts failing with ErrKeyExhausted.
func (t *XMSSTree) RemainingSignatures() uint32 {
	total := uint32(1) << t.params.H
	if t.idx >= total {
		return 0
	}
	return total - t.idx
}

// SecretKeyBytes packs the tree's current secret-key state into its
// 132-byte (n=32) wire form: idx(4) || SK_SEED(32) || SK_PRF(32) ||
// PUB_SEED(32) || root(32), per spec.md §6. The caller is responsible for
// persisting this atomically alongside the returned signature before
// releasing it, per spec.md §5.
func (t *XMSSTree) SecretKeyBytes() []byte {
	n := t.params.N
	out := make([]byte, 4+4*n)
	binary.BigEndian.PutUint32(out[:4], t.idx)
	copy(out[4:], t.skSeed)
	copy(out[4+n:], t.skPRF)
	copy(out[4+2*n:], t.pubSeed)
	copy(out[4+3*n:], t.root)
	return out
}

// ExtendedPK packs the tree's extended public key: desc(3) || root(n) ||
// pub_seed(n), per spec.md §4.8/§6.
func (t *XMSSTree) ExtendedPK() ([]byte, Error) {
	return PackExtendedPK(t.desc, t.root, t.pubSeed)
}

// Address derives the tree's 20-byte QRL address from its extended public
// key, per spec.md §4.8. Fails with ErrUnsupportedFormat unless the
// descriptor's address format is SHA_256.
func (t *XMSSTree) Address() ([AddressSize]byte, Error) {
	ePK, err := t.ExtendedPK()
	if err != nil {
		return [AddressSize]byte{}, err
	}
	return GetXMSSAddressFromPK(ePK)
}

// Sign produces one XMSS signature of message, then advances idx and the
// BDS state to the next leaf, per spec.md §4.7. Fails with
// ErrKeyExhausted once idx reaches 2^h; once that happens, or once Sign
// has returned successfully, the caller must never reuse the prior idx.
func (t *XMSSTree) Sign(message []byte) ([]byte, Error) {
	h := t.params.H
	if t.idx >= uint32(1)<<h {
		return nil, newKeyExhaustedError("xmss: key exhausted at idx %d (h=%d)", t.idx, h)
	}
	n := t.params.N
	fam := t.desc.HashFunction
	idx := t.idx

	r := prfUint64(fam, n, t.skPRF, uint64(idx))

	key := make([]byte, 3*n)
	copy(key, r)
	copy(key[n:2*n], t.root)
	copy(key[2*n:3*n], encodeUint64(uint64(idx), int(n)))
	digest, err := hMsg(fam, n, key, message)
	if err != nil {
		return nil, err
	}

	otsAddr := NewADRS(ADRSTypeOTS)
	otsAddr.SetOTSAddr(idx)
	otsSeed := prfAddr(fam, n, t.skSeed, otsAddr)

	sig := make([]byte, GetSignatureSize(t.params))
	binary.BigEndian.PutUint32(sig[:4], idx)
	copy(sig[4:4+n], r)

	wotsSig := sig[4+n : 4+n+t.params.WOTSParams.KeySize]
	if werr := WOTSSign(fam, wotsSig, digest, otsSeed, &t.params.WOTSParams, t.pubSeed, otsAddr); werr != nil {
		return nil, werr
	}

	copy(sig[4+n+t.params.WOTSParams.KeySize:], t.bds.authPath())

	log.Logf("xmss: signed idx=%d pk=%s", idx, fingerprint(t.pubSeed))

	t.idx++
	if uerr := t.bds.update(); uerr != nil {
		return nil, uerr
	}
	if t.RemainingSignatures() == 0 {
		log.Logf("xmss: key exhausted after idx=%d", idx)
	}
	return sig, nil
}

// VerifySignature checks a signature produced by Sign against the given
// message and extended public key, per spec.md §8's XMSS_verify property.
// It is not named in the API surface (§6 lists only the signing side of
// this stateful core), but every caller that only holds a public key
// needs it, and it is what the round-trip tests exercise Sign against.
func VerifySignature(sig, message, ePK []byte) (bool, Error) {
	desc, root, pubSeed, err := UnpackExtendedPK(ePK)
	if err != nil {
		return false, err
	}
	n := uint32(len(root))
	wp, err := NewWOTSParams(n, wotsW)
	if err != nil {
		return false, err
	}
	base := CalculateSignatureBaseSize(wp.KeySize)
	if uint32(len(sig)) < base || (uint32(len(sig))-base)%n != 0 {
		return false, newParameterError("signature has an invalid length: %d bytes", len(sig))
	}

	idx := binary.BigEndian.Uint32(sig[:4])
	r := sig[4 : 4+n]
	wotsSig := sig[4+n : base]
	authPath := sig[base:]
	h := uint32(len(authPath)) / n

	key := make([]byte, 3*n)
	copy(key, r)
	copy(key[n:2*n], root)
	copy(key[2*n:3*n], encodeUint64(uint64(idx), int(n)))
	digest, herr := hMsg(desc.HashFunction, n, key, message)
	if herr != nil {
		return false, herr
	}

	otsAddr := NewADRS(ADRSTypeOTS)
	otsAddr.SetOTSAddr(idx)
	pk := wotsPkFromSig(desc.HashFunction, wp, wotsSig, digest, pubSeed, otsAddr)

	lTreeAddr := NewADRS(ADRSTypeLTree)
	lTreeAddr.SetLTreeAddr(idx)
	node := lTree(desc.HashFunction, wp, pk, pubSeed, lTreeAddr)

	cur := idx
	for j := uint32(0); j < h; j++ {
		sibling := authPath[j*n : (j+1)*n]
		var parentIdx uint32
		if cur%2 == 0 {
			parentIdx = cur / 2
			node = hashUp(desc.HashFunction, n, node, sibling, pubSeed, j, parentIdx)
		} else {
			parentIdx = (cur - 1) / 2
			node = hashUp(desc.HashFunction, n, sibling, node, pubSeed, j, parentIdx)
		}
		cur = parentIdx
	}

	return bytes.Equal(node, root), nil
}
