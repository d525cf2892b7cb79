package xmss

import (
	"bytes"
	"testing"
)

func testSeed(fill byte) []byte {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = fill + byte(i)
	}
	return seed
}

// TestXMSSSignVerifyRoundTrip checks spec.md §8's core property:
// XMSS_verify(sig, m, ePK) = true for sig produced from the matching sk.
func TestXMSSSignVerifyRoundTrip(t *testing.T) {
	tree, err := newXMSSFromSeed(testSeed(1), 4, HashSHA2_256, AddrFormatSHA256, DefaultBuildOptions)
	if err != nil {
		t.Fatalf("newXMSSFromSeed: %v", err)
	}
	ePK, err := tree.ExtendedPK()
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("post-quantum message")
	sig, err := tree.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if uint32(len(sig)) != tree.SignatureSize() {
		t.Fatalf("Sign produced %d bytes, SignatureSize() says %d", len(sig), tree.SignatureSize())
	}

	ok, verr := VerifySignature(sig, msg, ePK)
	if verr != nil {
		t.Fatalf("VerifySignature: %v", verr)
	}
	if !ok {
		t.Fatal("VerifySignature(Sign(msg), msg, ePK) = false, want true")
	}

	ok, verr = VerifySignature(sig, []byte("a different message"), ePK)
	if verr != nil {
		t.Fatal(verr)
	}
	if ok {
		t.Fatal("VerifySignature accepted a signature over a different message")
	}
}

func TestXMSSSignVerifyAllHashFamilies(t *testing.T) {
	for _, fam := range []HashFunction{HashSHA2_256, HashSHAKE_128, HashSHAKE_256} {
		tree, err := newXMSSFromSeed(testSeed(9), 2, fam, AddrFormatSHA256, DefaultBuildOptions)
		if err != nil {
			t.Fatalf("newXMSSFromSeed(%s): %v", fam, err)
		}
		ePK, err := tree.ExtendedPK()
		if err != nil {
			t.Fatal(err)
		}
		msg := []byte("message for " + fam.String())
		sig, err := tree.Sign(msg)
		if err != nil {
			t.Fatalf("Sign(%s): %v", fam, err)
		}
		ok, verr := VerifySignature(sig, msg, ePK)
		if verr != nil {
			t.Fatal(verr)
		}
		if !ok {
			t.Fatalf("round trip failed for %s", fam)
		}
	}
}

// TestXMSSSignMonotonicity checks spec.md §8's monotonicity property: after
// sign, idx increases by exactly 1 and bdsState.nextLeaf increases by
// exactly 1.
func TestXMSSSignMonotonicity(t *testing.T) {
	tree, err := newXMSSFromSeed(testSeed(2), 4, HashSHA2_256, AddrFormatSHA256, DefaultBuildOptions)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		beforeIdx := tree.idx
		beforeLeaf := tree.bds.nextLeaf
		if _, err := tree.Sign([]byte("msg")); err != nil {
			t.Fatalf("Sign #%d: %v", i, err)
		}
		if tree.idx != beforeIdx+1 {
			t.Fatalf("idx advanced by %d, want 1", tree.idx-beforeIdx)
		}
		if tree.bds.nextLeaf != beforeLeaf+1 {
			t.Fatalf("bds.nextLeaf advanced by %d, want 1", tree.bds.nextLeaf-beforeLeaf)
		}
	}
}

// TestXMSSKeyExhaustion checks that Sign fails with ErrKeyExhausted once
// idx reaches 2^h, per spec.md §4.7/§7.
func TestXMSSKeyExhaustion(t *testing.T) {
	tree, err := newXMSSFromSeed(testSeed(3), 2, HashSHA2_256, AddrFormatSHA256, DefaultBuildOptions)
	if err != nil {
		t.Fatal(err)
	}
	total := uint32(1) << tree.params.H
	if got := tree.RemainingSignatures(); got != total {
		t.Fatalf("RemainingSignatures() = %d before any Sign, want %d", got, total)
	}
	for i := uint32(0); i < total; i++ {
		if _, err := tree.Sign([]byte("msg")); err != nil {
			t.Fatalf("Sign #%d: %v", i, err)
		}
	}
	if got := tree.RemainingSignatures(); got != 0 {
		t.Fatalf("RemainingSignatures() = %d after exhausting the key, want 0", got)
	}
	_, err = tree.Sign([]byte("one too many"))
	if err == nil {
		t.Fatal("Sign after exhaustion succeeded, want ErrKeyExhausted")
	}
	if err.Kind() != ErrKeyExhausted {
		t.Fatalf("Sign after exhaustion: Kind() = %v, want ErrKeyExhausted", err.Kind())
	}
}

// TestXMSSFromExtendedSeedRoundTrip checks that a tree rebuilt from its own
// packed extended seed reproduces the identical key material.
func TestXMSSFromExtendedSeedRoundTrip(t *testing.T) {
	seed := testSeed(4)
	desc := QRLDescriptor{HashFunction: HashSHA2_256, SignatureType: SigTypeXMSS, Height: 4, AddrFormatType: AddrFormatSHA256}
	extSeed, err := PackExtendedSeed(desc, seed)
	if err != nil {
		t.Fatal(err)
	}

	a, err := newXMSSFromExtendedSeed(extSeed, DefaultBuildOptions)
	if err != nil {
		t.Fatal(err)
	}
	b, err := initializeTree(desc, seed, DefaultBuildOptions)
	if err != nil {
		t.Fatal(err)
	}
	ePKa, _ := a.ExtendedPK()
	ePKb, _ := b.ExtendedPK()
	if !bytes.Equal(ePKa, ePKb) {
		t.Fatal("newXMSSFromExtendedSeed and initializeTree produced different extended public keys")
	}
}

func TestNewXMSSFromHeightUsesInjectedRandomness(t *testing.T) {
	fixed := testSeed(5)
	randFunc := func(buf []byte) error {
		copy(buf, fixed)
		return nil
	}
	fromRand, err := newXMSSFromHeight(4, HashSHA2_256, randFunc, DefaultBuildOptions)
	if err != nil {
		t.Fatal(err)
	}
	fromSeed, err := newXMSSFromSeed(fixed, 4, HashSHA2_256, AddrFormatSHA256, DefaultBuildOptions)
	if err != nil {
		t.Fatal(err)
	}
	ePK1, _ := fromRand.ExtendedPK()
	ePK2, _ := fromSeed.ExtendedPK()
	if !bytes.Equal(ePK1, ePK2) {
		t.Fatal("newXMSSFromHeight did not use the injected random seed")
	}
}

func TestNewXMSSFromHeightPropagatesRandError(t *testing.T) {
	boom := newParameterError("entropy source unavailable")
	randFunc := func(buf []byte) error { return boom }
	if _, err := newXMSSFromHeight(4, HashSHA2_256, randFunc, DefaultBuildOptions); err == nil {
		t.Fatal("newXMSSFromHeight with a failing RandFunc succeeded, want error")
	}
}

func TestXMSSTreeAddressMatchesGetXMSSAddressFromPK(t *testing.T) {
	tree, err := newXMSSFromSeed(testSeed(6), 4, HashSHA2_256, AddrFormatSHA256, DefaultBuildOptions)
	if err != nil {
		t.Fatal(err)
	}
	addr, err := tree.Address()
	if err != nil {
		t.Fatal(err)
	}
	ePK, _ := tree.ExtendedPK()
	want, err := GetXMSSAddressFromPK(ePK)
	if err != nil {
		t.Fatal(err)
	}
	if addr != want {
		t.Fatal("XMSSTree.Address() != GetXMSSAddressFromPK(ExtendedPK())")
	}
}

func TestSecretKeyBytesLayout(t *testing.T) {
	tree, err := newXMSSFromSeed(testSeed(7), 4, HashSHA2_256, AddrFormatSHA256, DefaultBuildOptions)
	if err != nil {
		t.Fatal(err)
	}
	sk := tree.SecretKeyBytes()
	if len(sk) != 132 {
		t.Fatalf("SecretKeyBytes() is %d bytes, want 132 for n=32", len(sk))
	}
	if !bytes.Equal(sk[4:36], tree.skSeed) {
		t.Fatal("SecretKeyBytes()[4:36] != SK_SEED")
	}
	if !bytes.Equal(sk[36:68], tree.skPRF) {
		t.Fatal("SecretKeyBytes()[36:68] != SK_PRF")
	}
	if !bytes.Equal(sk[68:100], tree.pubSeed) {
		t.Fatal("SecretKeyBytes()[68:100] != PUB_SEED")
	}
	if !bytes.Equal(sk[100:132], tree.root) {
		t.Fatal("SecretKeyBytes()[100:132] != root")
	}
}
