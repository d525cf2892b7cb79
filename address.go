package xmss

import "encoding/binary"

// ADRSType is the type tag carried in word 3 of an ADRS.
type ADRSType uint32

const (
	// ADRSTypeOTS marks an address as addressing a WOTS+ key pair.
	ADRSTypeOTS ADRSType = 0
	// ADRSTypeLTree marks an address as addressing an L-tree node.
	ADRSTypeLTree ADRSType = 1
	// ADRSTypeHashTree marks an address as addressing an interior hash-tree node.
	ADRSTypeHashTree ADRSType = 2
)

// ADRS is the 32-byte (8 x big-endian uint32) address structure that feeds
// the PRF/F/H network, providing domain separation between otherwise
// identical hash calls. For the single-tree XMSS this core implements,
// word 0 (layer) and words 1-2 (tree address) are always zero; they exist
// so the byte layout matches the wire format other XMSS[MT]
// implementations (and QRL's own) expect.
type ADRS [8]uint32

// NewADRS returns a zeroed ADRS of type typ.
func NewADRS(typ ADRSType) ADRS {
	var a ADRS
	a[3] = uint32(typ)
	return a
}

// ADRSFromWords validates and copies an externally supplied address. Any
// API accepting a caller-supplied ADRS must reject anything that isn't
// exactly 8 32-bit words - this is that check.
func ADRSFromWords(words []uint32) (ADRS, Error) {
	var a ADRS
	if len(words) != 8 {
		return a, newParameterError("addr should be an array of size 8")
	}
	copy(a[:], words)
	return a, nil
}

// Type returns the address type tag (word 3).
func (a ADRS) Type() ADRSType {
	return ADRSType(a[3])
}

// SetType sets the address type, zeroing the type-specific words (4-6) as
// spec.md requires whenever the type transitions - stale OTS-chain
// coordinates must never leak into an L-tree or hash-tree address.
func (a *ADRS) SetType(typ ADRSType) {
	a[3] = uint32(typ)
	a[4] = 0
	a[5] = 0
	a[6] = 0
}

// SetOTSAddr sets the OTS key-pair index. Only meaningful when Type() == ADRSTypeOTS.
func (a *ADRS) SetOTSAddr(i uint32) { a[4] = i }

// SetChainAddr sets the WOTS+ chain index. Only meaningful when Type() == ADRSTypeOTS.
func (a *ADRS) SetChainAddr(i uint32) { a[5] = i }

// SetHashAddr sets the chain step index. Only meaningful when Type() == ADRSTypeOTS.
func (a *ADRS) SetHashAddr(i uint32) { a[6] = i }

// SetLTreeAddr sets the L-tree index. Only meaningful when Type() == ADRSTypeLTree.
func (a *ADRS) SetLTreeAddr(i uint32) { a[4] = i }

// SetTreeHeight sets the interior-node height. Meaningful for L-tree and hash-tree addresses.
func (a *ADRS) SetTreeHeight(h uint32) { a[5] = h }

// SetTreeIndex sets the interior-node index at the current height. Meaningful for L-tree and hash-tree addresses.
func (a *ADRS) SetTreeIndex(i uint32) { a[6] = i }

// SetKeyAndMask selects which of the three PRF outputs (key, left bitmask,
// right bitmask) a call to the hash network is deriving.
func (a *ADRS) SetKeyAndMask(v uint32) { a[7] = v }

// Bytes serialises the address to its 32-byte big-endian wire form.
func (a ADRS) Bytes() []byte {
	buf := make([]byte, 32)
	a.writeInto(buf)
	return buf
}

func (a ADRS) writeInto(buf []byte) {
	for i := 0; i < 8; i++ {
		binary.BigEndian.PutUint32(buf[i*4:(i+1)*4], a[i])
	}
}
