package xmss

import "math/bits"

// WOTSParams holds the derived parameters of a WOTS+ instance, per
// spec.md §3. Two WOTSParams built from equal (n, w) are value-equal,
// satisfying the idempotence property spec.md §8 requires.
type WOTSParams struct {
	N    uint32 // security parameter / hash output length in bytes
	W    uint32 // Winternitz parameter: chain length
	LogW uint32 // log2(W)
	Len1 uint32 // chains covering the message digest
	Len2 uint32 // chains covering the checksum
	Len  uint32 // Len1 + Len2: total number of chains
	// KeySize is the size in bytes of an expanded WOTS+ secret or public
	// key: Len * N.
	KeySize uint32
}

// NewWOTSParams derives a WOTSParams for the given security parameter n
// and Winternitz parameter w. w must be one of {4, 16, 256}; for the
// cryptographic QRL profiles w is always 16.
func NewWOTSParams(n, w uint32) (*WOTSParams, Error) {
	var verrs validationErrors
	if n == 0 {
		verrs.add("n must be positive")
	}
	switch w {
	case 4, 16, 256:
	default:
		verrs.add("w must be one of 4, 16, 256, got %d", w)
	}
	if err := verrs.errOrNil(); err != nil {
		return nil, err
	}

	logW := uint32(bits.Len32(w) - 1)
	len1 := ceilDiv(8*n, logW)
	len2 := log2Floor(len1*(w-1))/logW + 1
	p := &WOTSParams{
		N:    n,
		W:    w,
		LogW: logW,
		Len1: len1,
		Len2: len2,
		Len:  len1 + len2,
	}
	p.KeySize = p.Len * p.N
	return p, nil
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}

func log2Floor(x uint32) uint32 {
	if x == 0 {
		return 0
	}
	return uint32(bits.Len32(x) - 1)
}

// XMSSParams holds the derived parameters of an XMSS instance, per
// spec.md §3: a WOTSParams, the security parameter n, the tree height h
// and the BDS parameter k.
type XMSSParams struct {
	WOTSParams WOTSParams
	N          uint32
	H          uint32
	K          uint32
}

// NewXMSSParams derives an XMSSParams. k must be 0 or an even number less
// than h, and h-k must be even - these are the BDS traversal's own
// constraints (spec.md §3), not WOTS+'s.
func NewXMSSParams(n, h, w, k uint32) (*XMSSParams, Error) {
	wp, err := NewWOTSParams(n, w)

	var verrs validationErrors
	if err != nil {
		verrs.add("%s", err.Error())
	}
	if h == 0 || h > 31 {
		verrs.add("h must be in 1..31, got %d", h)
	}
	if k != 0 && k%2 != 0 {
		verrs.add("k must be 0 or even, got %d", k)
	}
	if k >= h {
		verrs.add("k must be less than h (k=%d, h=%d)", k, h)
	}
	if (h-k)%2 != 0 {
		verrs.add("h-k must be even (h=%d, k=%d)", h, k)
	}
	if verrErr := verrs.errOrNil(); verrErr != nil {
		return nil, verrErr
	}

	return &XMSSParams{
		WOTSParams: *wp,
		N:          n,
		H:          h,
		K:          k,
	}, nil
}

// CalcBaseW decomposes input into outLen digits base w, written into out.
// It consumes the smallest number of input bytes needed, MSB-first within
// each consumed byte, per spec.md §4.3. input is never mutated; bytes of
// out beyond outLen are left untouched.
func CalcBaseW(out []uint8, outLen int, input []byte, p *WOTSParams) {
	var in, bits, total uint32
	var consumed int
	for consumed = 0; consumed < outLen; consumed++ {
		if bits == 0 {
			total = uint32(input[in])
			in++
			bits = 8
		}
		bits -= p.LogW
		out[consumed] = uint8((total >> bits) & (p.W - 1))
	}
}

// CalculateSignatureBaseSize returns the size in bytes of an XMSS
// signature minus its authentication path: idx(4) + r(n) + wots_sig,
// i.e. keySize + 4 + 32 per spec.md §8 (the "+32" covers the fixed n=32
// randomisation value r used throughout the QRL profiles this core
// targets).
func CalculateSignatureBaseSize(keySize uint32) uint32 {
	return keySize + 4 + 32
}

// GetSignatureSize returns the full size in bytes of an XMSS signature:
// CalculateSignatureBaseSize(keySize) + auth_path(h*n), i.e. idx(4) +
// r(32) + wots_sig(keySize) + auth_path(h*n).
func GetSignatureSize(p *XMSSParams) uint32 {
	return CalculateSignatureBaseSize(p.WOTSParams.KeySize) + p.H*p.N
}
