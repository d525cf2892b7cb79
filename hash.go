package xmss

import (
	"crypto/sha256"

	"github.com/templexxx/xor"
	"golang.org/x/crypto/sha3"
)

// HashFunction selects which underlying hash family core_hash routes to.
// The values match the QRL descriptor's hashFunction nibble (spec.md §3).
type HashFunction uint8

const (
	// HashSHA2_256 routes core_hash through SHA-256.
	HashSHA2_256 HashFunction = 0
	// HashSHAKE_128 routes core_hash through SHAKE-128.
	HashSHAKE_128 HashFunction = 1
	// HashSHAKE_256 routes core_hash through SHAKE-256.
	HashSHAKE_256 HashFunction = 2
)

// String renders the hash function name. Hand-authored in the shape
// github.com/alvaroloes/enumer would generate for a `go:generate enumer
// -type=HashFunction` directive; this package doesn't run generators, so
// the switch is written out instead of produced by the tool.
//
//go:generate enumer -type=HashFunction
func (f HashFunction) String() string {
	switch f {
	case HashSHA2_256:
		return "SHA2_256"
	case HashSHAKE_128:
		return "SHAKE_128"
	case HashSHAKE_256:
		return "SHAKE_256"
	default:
		return "HashFunction(" + encodeHex(uint64(f)) + ")"
	}
}

// Domain-separation tags prepended (as a 32-byte big-endian word) to every
// core_hash call in the PRF/F/H/H_msg network, per spec.md §4.1.
const (
	tagF    = 0
	tagH    = 1
	tagHMsg = 2
	tagPRF  = 3
)

// coreHash routes to SHA-256, SHAKE-128 or SHAKE-256, producing exactly n
// bytes of output. This is the single narrow interface spec.md §1 asks the
// core to consume concrete hash primitives through - no other function in
// this package calls crypto/sha256 or golang.org/x/crypto/sha3 directly.
func coreHash(fam HashFunction, n uint32, input []byte) []byte {
	switch fam {
	case HashSHA2_256:
		sum := sha256.Sum256(input)
		out := make([]byte, n)
		copy(out, sum[:])
		return out
	case HashSHAKE_128:
		out := make([]byte, n)
		sha3.ShakeSum128(out, input)
		return out
	case HashSHAKE_256:
		out := make([]byte, n)
		sha3.ShakeSum256(out, input)
		return out
	default:
		panic("xmss: unknown hash family")
	}
}

// prf computes PRF(key, in) = core_hash(3 || key || in), per spec.md §4.1.
// in must be 32 bytes; key must be n bytes.
func prf(fam HashFunction, n uint32, key, in []byte) []byte {
	buf := make([]byte, n+32+32)
	copy(buf, encodeUint64(tagPRF, 32))
	copy(buf[32:], key)
	copy(buf[32+n:], in)
	return coreHash(fam, n, buf)
}

// prfUint64 is prf with the 32-byte input built from to_byte(x, 32).
func prfUint64(fam HashFunction, n uint32, key []byte, x uint64) []byte {
	return prf(fam, n, key, encodeUint64(x, 32))
}

// prfUint64Into is prfUint64 but writes into (and returns) out instead of a
// freshly allocated slice - the scratchPad hot path's way of keeping one
// n-byte buffer alive across the 2^h leaves of a tree build.
func prfUint64Into(fam HashFunction, n uint32, key []byte, x uint64, out []byte) []byte {
	copy(out, prfUint64(fam, n, key, x))
	return out
}

// prfAddr is prf keyed on an ADRS's 32-byte wire form - the shape the
// chaining function and the tree-hash network use throughout §4.3/§4.4.
func prfAddr(fam HashFunction, n uint32, key []byte, addr ADRS) []byte {
	return prf(fam, n, key, addr.Bytes())
}

// f computes F(key, bitmask, in) = core_hash(0 || key || (in XOR
// bitmask)), with key = PRF(pub_seed, addr[KeyAndMask=0]) and
// bitmask = PRF(pub_seed, addr[KeyAndMask=1]), per spec.md §4.1/§4.3.
// addr is passed by value so the caller's KeyAndMask word is untouched.
func f(fam HashFunction, n uint32, in, pubSeed []byte, addr ADRS) []byte {
	addr.SetKeyAndMask(0)
	key := prfAddr(fam, n, pubSeed, addr)
	addr.SetKeyAndMask(1)
	bitmask := prfAddr(fam, n, pubSeed, addr)

	buf := make([]byte, 3*n)
	copy(buf, encodeUint64(tagF, int(n)))
	copy(buf[n:2*n], key)
	xor.BytesSameLen(buf[2*n:3*n], in, bitmask)
	return coreHash(fam, n, buf)
}

// h computes H(key, in) = core_hash(1 || key || (left XOR bitmask_left) ||
// (right XOR bitmask_right)), the RAND_HASH used to climb L-trees and hash
// trees. key and the two bitmasks are all PRF(pub_seed, addr) at
// KeyAndMask 0/1/2 respectively, per spec.md §4.1.
func h(fam HashFunction, n uint32, left, right, pubSeed []byte, addr ADRS) []byte {
	addr.SetKeyAndMask(0)
	key := prfAddr(fam, n, pubSeed, addr)
	addr.SetKeyAndMask(1)
	leftBitmask := prfAddr(fam, n, pubSeed, addr)
	addr.SetKeyAndMask(2)
	rightBitmask := prfAddr(fam, n, pubSeed, addr)

	buf := make([]byte, 4*n)
	copy(buf, encodeUint64(tagH, int(n)))
	copy(buf[n:2*n], key)
	xor.BytesSameLen(buf[2*n:3*n], left, leftBitmask)
	xor.BytesSameLen(buf[3*n:4*n], right, rightBitmask)
	return coreHash(fam, n, buf)
}

// hMsg computes the randomised message hash H_msg(key, m) = core_hash(2 ||
// key || m) where key = r || root || to_byte(idx, n). It is an error for
// key to be anything other than 3n bytes long, per spec.md §4.1/§8.
func hMsg(fam HashFunction, n uint32, key, input []byte) ([]byte, Error) {
	if uint32(len(key)) != 3*n {
		return nil, newParameterError(
			"H_msg key must be 3n=%d bytes for n=%d, got %d bytes", 3*n, n, len(key))
	}
	buf := make([]byte, 32+len(key)+len(input))
	copy(buf, encodeUint64(tagHMsg, 32))
	copy(buf[32:], key)
	copy(buf[32+len(key):], input)
	return coreHash(fam, n, buf), nil
}
