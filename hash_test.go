package xmss

import (
	"strconv"
	"strings"
	"testing"
)

func TestCoreHashOutputLength(t *testing.T) {
	for _, fam := range []HashFunction{HashSHA2_256, HashSHAKE_128, HashSHAKE_256} {
		for _, n := range []uint32{16, 32, 64} {
			out := coreHash(fam, n, []byte("some input"))
			if uint32(len(out)) != n {
				t.Fatalf("coreHash(%s, %d) returned %d bytes", fam, n, len(out))
			}
		}
	}
}

func TestCoreHashDeterministic(t *testing.T) {
	in := []byte("deterministic input")
	for _, fam := range []HashFunction{HashSHA2_256, HashSHAKE_128, HashSHAKE_256} {
		a := coreHash(fam, 32, in)
		b := coreHash(fam, 32, in)
		if string(a) != string(b) {
			t.Fatalf("coreHash(%s) not deterministic", fam)
		}
	}
}

func TestFDistinguishesBitmask(t *testing.T) {
	n := uint32(32)
	pubSeed := make([]byte, n)
	in := make([]byte, n)
	for i := range in {
		in[i] = byte(i)
	}
	addr1 := NewADRS(ADRSTypeOTS)
	addr1.SetOTSAddr(1)
	addr2 := NewADRS(ADRSTypeOTS)
	addr2.SetOTSAddr(2)

	out1 := f(HashSHA2_256, n, in, pubSeed, addr1)
	out2 := f(HashSHA2_256, n, in, pubSeed, addr2)
	if string(out1) == string(out2) {
		t.Fatal("F produced the same output for two different addresses")
	}
}

// TestHMsgKeyLength checks spec.md §8's boundary property: hMsg with
// |key| = 3n succeeds; any other length fails with a message naming both
// n and the observed key length.
func TestHMsgKeyLength(t *testing.T) {
	n := uint32(32)
	if _, err := hMsg(HashSHA2_256, n, make([]byte, 3*n), []byte("msg")); err != nil {
		t.Fatalf("hMsg with |key|=3n failed: %v", err)
	}

	for _, badLen := range []int{0, int(n), int(3*n - 1), int(3*n + 1)} {
		_, err := hMsg(HashSHA2_256, n, make([]byte, badLen), []byte("msg"))
		if err == nil {
			t.Fatalf("hMsg with |key|=%d succeeded, want error", badLen)
		}
		if err.Kind() != ErrParameter {
			t.Fatalf("hMsg with |key|=%d: Kind() = %v, want ErrParameter", badLen, err.Kind())
		}
		msg := err.Error()
		if !strings.Contains(msg, "32") {
			t.Fatalf("hMsg error %q does not mention n=%d", msg, n)
		}
		if !strings.Contains(msg, strconv.Itoa(badLen)) {
			t.Fatalf("hMsg error %q does not mention observed key length %d", msg, badLen)
		}
	}
}
