package xmss

// wotsExpandSeed expands an OTS secret seed into the Len secret-key
// chain-start values: sk_i = PRF(sk_seed, to_byte(i, 32)), per
// spec.md §4.3.
func wotsExpandSeed(fam HashFunction, p *WOTSParams, seed []byte) []byte {
	ret := make([]byte, p.N*p.Len)
	for i := uint32(0); i < p.Len; i++ {
		copy(ret[i*p.N:(i+1)*p.N], prfUint64(fam, p.N, seed, uint64(i)))
	}
	return ret
}

// wotsChainLengths converts a message digest into the Len base-w digits
// used to index each WOTS+ chain: the first Len1 digits encode msg
// itself, the last Len2 encode the checksum, per spec.md §4.3.
func wotsChainLengths(p *WOTSParams, msg []byte) []uint8 {
	ret := make([]uint8, p.Len)
	CalcBaseW(ret[:p.Len1], int(p.Len1), msg, p)

	var csum uint32
	for i := uint32(0); i < p.Len1; i++ {
		csum += p.W - 1 - uint32(ret[i])
	}
	csum <<= (8 - (p.Len2*p.LogW)%8) % 8

	csumBytes := encodeUint64(uint64(csum), int((p.Len2*p.LogW+7)/8))
	CalcBaseW(ret[p.Len1:], int(p.Len2), csumBytes, p)
	return ret
}

// wotsGenChainInto computes the (start+steps)'th rung of a WOTS+ chain
// given its start'th rung, writing the result into out (which may alias
// in). Each of the steps applications of F uses a fresh ADRS hash-address
// word, per spec.md §4.3.
func wotsGenChainInto(fam HashFunction, p *WOTSParams, in, pubSeed []byte, addr ADRS, start, steps uint32, out []byte) {
	copy(out, in)
	for i := start; i < start+steps && i < p.W; i++ {
		addr.SetHashAddr(i)
		copy(out, f(fam, p.N, out, pubSeed, addr))
	}
}

// wotsPkGen derives a WOTS+ public key from a secret seed: each of the Len
// chains is walked all the way from 0 to w-1, per spec.md §4.3.
func wotsPkGen(fam HashFunction, p *WOTSParams, seed, pubSeed []byte, addr ADRS) []byte {
	buf := wotsExpandSeed(fam, p, seed)
	for i := uint32(0); i < p.Len; i++ {
		addr.SetChainAddr(i)
		chain := buf[p.N*i : p.N*(i+1)]
		wotsGenChainInto(fam, p, chain, pubSeed, addr, 0, p.W-1, chain)
	}
	return buf
}

// wotsPkGenInto is wotsPkGen but writes the expanded public key into (and
// returns) out instead of letting wotsExpandSeed's own allocation escape -
// the scratchPad hot path's buffer-reuse counterpart, mirrored from the
// teacher's own into-suffixed helpers in core.go/api.go.
func wotsPkGenInto(fam HashFunction, p *WOTSParams, seed, pubSeed []byte, addr ADRS, out []byte) []byte {
	copy(out, wotsPkGen(fam, p, seed, pubSeed, addr))
	return out
}

// WOTSSign produces a WOTS+ one-time signature of msg under the secret
// seed sk, writing it into sig (which must be p.KeySize bytes long). addr
// must be exactly 8 words - callers that accept address words from the
// outside should route them through ADRSFromWords first, which is the
// boundary spec.md §6/§8 requires ("addr should be an array of size 8").
func WOTSSign(fam HashFunction, sig, msg, sk []byte, p *WOTSParams, pubSeed []byte, addr ADRS) Error {
	lengths := wotsChainLengths(p, msg)
	buf := wotsExpandSeed(fam, p, sk)
	for i := uint32(0); i < p.Len; i++ {
		addr.SetChainAddr(i)
		chain := buf[p.N*i : p.N*(i+1)]
		wotsGenChainInto(fam, p, chain, pubSeed, addr, 0, uint32(lengths[i]), chain)
	}
	copy(sig, buf)
	return nil
}

// WOTSSignWords is WOTSSign for callers holding a raw 8-word address
// slice rather than an ADRS value - exactly the boundary spec.md §8
// describes: "wotsSign with |adrs| != 8 fails with 'addr should be an
// array of size 8'".
func WOTSSignWords(fam HashFunction, sig, msg, sk []byte, p *WOTSParams, pubSeed []byte, addrWords []uint32) Error {
	addr, err := ADRSFromWords(addrWords)
	if err != nil {
		return err
	}
	return WOTSSign(fam, sig, msg, sk, p, pubSeed, addr)
}

// wotsPkFromSig recovers the WOTS+ public key implied by a signature of
// msg, by completing each chain from its signed rung up to w-1, per
// spec.md §4.3.
func wotsPkFromSig(fam HashFunction, p *WOTSParams, sig, msg, pubSeed []byte, addr ADRS) []byte {
	lengths := wotsChainLengths(p, msg)
	out := make([]byte, p.N*p.Len)
	for i := uint32(0); i < p.Len; i++ {
		addr.SetChainAddr(i)
		start := uint32(lengths[i])
		wotsGenChainInto(fam, p, sig[p.N*i:p.N*(i+1)], pubSeed, addr,
			start, p.W-1-start, out[p.N*i:p.N*(i+1)])
	}
	return out
}
