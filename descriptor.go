package xmss

// QRLDescriptor is the 3-byte header that selects the hash family,
// signature type, tree height, and address format for a key, per
// spec.md §3/§6.
type QRLDescriptor struct {
	HashFunction   HashFunction
	SignatureType  uint8 // raw nibble - spec.md §9 says not to validate against a closed enum
	Height         uint32
	AddrFormatType uint8
}

// AddrFormatSHA256 is the only address-format type this core supports
// deriving addresses for, per spec.md §4.8/§6.
const AddrFormatSHA256 = 0

// DescriptorSize is the packed size in bytes of a QRLDescriptor.
const DescriptorSize = 3

// Pack encodes the descriptor into its 3-byte wire form, per spec.md §6.
func (d QRLDescriptor) Pack() [DescriptorSize]byte {
	var out [DescriptorSize]byte
	out[0] = (d.SignatureType << 4) | (uint8(d.HashFunction) & 0xF)
	out[1] = (d.AddrFormatType << 4) | (uint8(d.Height>>1) & 0xF)
	out[2] = uint8(d.Height & 1)
	return out
}

// NewQRLDescriptorFromBytes decodes a 3-byte descriptor, per spec.md §6.
func NewQRLDescriptorFromBytes(b []byte) (QRLDescriptor, Error) {
	if len(b) != DescriptorSize {
		return QRLDescriptor{}, newParameterError(
			"descriptor must be %d bytes, got %d", DescriptorSize, len(b))
	}
	return QRLDescriptor{
		HashFunction:   HashFunction(b[0] & 0xF),
		SignatureType:  b[0] >> 4,
		AddrFormatType: b[1] >> 4,
		Height:         (uint32(b[1]&0xF) << 1) | uint32(b[2]&1),
	}, nil
}

// ExtendedSeedSize is the packed size in bytes of an extended seed:
// desc(3) || seed(48), per spec.md §6.
const ExtendedSeedSize = DescriptorSize + 48

// PackExtendedSeed packs desc and a 48-byte seed into the 51-byte
// extended-seed wire form.
func PackExtendedSeed(desc QRLDescriptor, seed []byte) ([]byte, Error) {
	if len(seed) != 48 {
		return nil, newParameterError("seed must be 48 bytes, got %d", len(seed))
	}
	out := make([]byte, ExtendedSeedSize)
	packed := desc.Pack()
	copy(out, packed[:])
	copy(out[DescriptorSize:], seed)
	return out, nil
}

// UnpackExtendedSeed splits an extended seed into its descriptor and
// 48-byte seed.
func UnpackExtendedSeed(extendedSeed []byte) (QRLDescriptor, []byte, Error) {
	if len(extendedSeed) != ExtendedSeedSize {
		return QRLDescriptor{}, nil, newParameterError(
			"extended seed must be %d bytes, got %d", ExtendedSeedSize, len(extendedSeed))
	}
	desc, err := NewQRLDescriptorFromBytes(extendedSeed[:DescriptorSize])
	if err != nil {
		return QRLDescriptor{}, nil, err
	}
	seed := make([]byte, 48)
	copy(seed, extendedSeed[DescriptorSize:])
	return desc, seed, nil
}

// ExtendedPKSize is the packed size in bytes of an extended public key for
// n=32: desc(3) || root(32) || pub_seed(32), per spec.md §4.8/§6.
const ExtendedPKSize = DescriptorSize + 32 + 32

// PackExtendedPK packs desc, root and pubSeed into the 67-byte extended
// public-key wire form.
func PackExtendedPK(desc QRLDescriptor, root, pubSeed []byte) ([]byte, Error) {
	n := uint32(len(root))
	if uint32(len(pubSeed)) != n {
		return nil, newParameterError("root and pub_seed must be the same length")
	}
	out := make([]byte, DescriptorSize+2*n)
	packed := desc.Pack()
	copy(out, packed[:])
	copy(out[DescriptorSize:], root)
	copy(out[DescriptorSize+n:], pubSeed)
	return out, nil
}

// UnpackExtendedPK splits an extended public key (n=32) into its
// descriptor, root and pub_seed.
func UnpackExtendedPK(ePK []byte) (QRLDescriptor, []byte, []byte, Error) {
	if len(ePK) != ExtendedPKSize {
		return QRLDescriptor{}, nil, nil, newParameterError(
			"extended public key must be %d bytes, got %d", ExtendedPKSize, len(ePK))
	}
	desc, err := NewQRLDescriptorFromBytes(ePK[:DescriptorSize])
	if err != nil {
		return QRLDescriptor{}, nil, nil, err
	}
	root := make([]byte, 32)
	pubSeed := make([]byte, 32)
	copy(root, ePK[DescriptorSize:DescriptorSize+32])
	copy(pubSeed, ePK[DescriptorSize+32:])
	return desc, root, pubSeed, nil
}

// AddressSize is the packed size in bytes of a QRL address, per spec.md
// §6.
const AddressSize = 20

// GetXMSSAddressFromPK derives the 20-byte QRL address from an extended
// public key: desc(3) || the first 17 bytes of sha256(ePK), per spec.md
// §4.8. The 17-byte truncation (rather than the full 32-byte digest)
// mirrors the destination-length truncation of Go's copy() in the
// reference address builder, grounded on
// other_examples/cyyber-qrl-rich-list-indexer__xmss.go's
// GetXMSSAddressFromPK - whose copy(address[DescriptorSize:], hashedKey[:])
// call only transfers as many bytes as the (shorter) address buffer has
// left. Only addrFormatType == AddrFormatSHA256 is supported, per spec.md
// §6/§8.
func GetXMSSAddressFromPK(ePK []byte) ([AddressSize]byte, Error) {
	var address [AddressSize]byte
	desc, _, _, err := UnpackExtendedPK(ePK)
	if err != nil {
		return address, err
	}
	if desc.AddrFormatType != AddrFormatSHA256 {
		return address, newUnsupportedFormatError("Address format type not supported")
	}

	packed := desc.Pack()
	copy(address[:DescriptorSize], packed[:])

	digest := coreHash(HashSHA2_256, 32, ePK)
	copy(address[DescriptorSize:], digest)

	return address, nil
}
