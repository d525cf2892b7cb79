package xmss

// lTree compresses a WOTS+ public key (p.Len blocks of n bytes) into a
// single n-byte leaf by pairwise hashing, carrying an odd element over to
// the next level unchanged, per spec.md §4.4. wotsPk is overwritten as
// scratch space.
func lTree(fam HashFunction, p *WOTSParams, wotsPk, pubSeed []byte, addr ADRS) []byte {
	n := p.N
	l := p.Len
	var height uint32
	for l > 1 {
		addr.SetTreeHeight(height)
		parents := l / 2
		for i := uint32(0); i < parents; i++ {
			addr.SetTreeIndex(i)
			copy(wotsPk[i*n:(i+1)*n], h(fam, n,
				wotsPk[2*i*n:(2*i+1)*n],
				wotsPk[(2*i+1)*n:(2*i+2)*n],
				pubSeed, addr))
		}
		if l%2 == 1 {
			copy(wotsPk[(l/2)*n:(l/2+1)*n], wotsPk[(l-1)*n:l*n])
			l = l/2 + 1
		} else {
			l /= 2
		}
		height++
	}
	ret := make([]byte, n)
	copy(ret, wotsPk[:n])
	return ret
}

// otsSeed derives the seed for the leaf-th WOTS+ key pair from the
// secret-key seed: PRF(sk_seed, to_byte(leaf, 32)), per spec.md §4.6/§4.7.
func otsSeed(fam HashFunction, n uint32, skSeed []byte, leaf uint32) []byte {
	return prfUint64(fam, n, skSeed, uint64(leaf))
}

// genLeaf computes the leaf node for the given WOTS+ key-pair index by
// deriving its secret seed, generating the WOTS+ public key, and
// compressing it with an L-tree, per spec.md §4.4.
func genLeaf(fam HashFunction, p *WOTSParams, skSeed, pubSeed []byte, leaf uint32) []byte {
	otsAddr := NewADRS(ADRSTypeOTS)
	otsAddr.SetOTSAddr(leaf)
	seed := otsSeed(fam, p.N, skSeed, leaf)
	pk := wotsPkGen(fam, p, seed, pubSeed, otsAddr)

	lTreeAddr := NewADRS(ADRSTypeLTree)
	lTreeAddr.SetLTreeAddr(leaf)
	return lTree(fam, p, pk, pubSeed, lTreeAddr)
}

// hashTreeAddr builds the ADRS used to combine two interior nodes at the
// given height/index into their parent, per spec.md §4.4.
func hashTreeAddr(height, index uint32) ADRS {
	addr := NewADRS(ADRSTypeHashTree)
	addr.SetTreeHeight(height)
	addr.SetTreeIndex(index)
	return addr
}

// hashUp combines two sibling nodes at the given height/index in the hash
// tree (as opposed to the L-tree) into their parent.
func hashUp(fam HashFunction, n uint32, left, right, pubSeed []byte, height, index uint32) []byte {
	return h(fam, n, left, right, pubSeed, hashTreeAddr(height, index))
}
