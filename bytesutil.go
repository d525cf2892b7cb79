package xmss

import (
	"encoding/binary"
	goLog "log"

	"github.com/cespare/xxhash"
)

// encodeUint64Into encodes x into out as a big-endian integer occupying
// the whole of out, left-padded with zeroes. Mirrors the teacher's
// to_byte/encodeUint64Into helper, which is how the spec's "to_byte(i, n)"
// appears throughout §4.
func encodeUint64Into(x uint64, out []byte) {
	if len(out)%8 == 0 {
		binary.BigEndian.PutUint64(out[len(out)-8:], x)
		for i := 0; i < len(out)-8; i += 8 {
			binary.BigEndian.PutUint64(out[i:i+8], 0)
		}
		return
	}
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = byte(x)
		x >>= 8
	}
}

// encodeUint64 is encodeUint64Into with a freshly allocated buffer.
func encodeUint64(x uint64, outLen int) []byte {
	ret := make([]byte, outLen)
	encodeUint64Into(x, ret)
	return ret
}

// decodeUint64 interprets in as a big-endian unsigned integer.
func decodeUint64(in []byte) (ret uint64) {
	for i := 0; i < len(in); i++ {
		ret |= uint64(in[i]) << uint64(8*(len(in)-1-i))
	}
	return
}

// Logger is the logging collaborator this package reports BDS scheduling
// decisions and key-exhaustion warnings to. The signing hot path never
// logs anything derived from secret material.
type Logger interface {
	Logf(format string, a ...interface{})
}

type dummyLogger struct{}

func (dummyLogger) Logf(format string, a ...interface{}) {}

type stdlibLogger struct{}

func (stdlibLogger) Logf(format string, a ...interface{}) { goLog.Printf(format, a...) }

var log Logger = dummyLogger{}

// EnableLogging routes this package's log output to the standard log package.
func EnableLogging() { SetLogger(stdlibLogger{}) }

// SetLogger installs logger as the destination for this package's log
// output, or disables logging if logger is nil.
func SetLogger(logger Logger) {
	if logger == nil {
		log = dummyLogger{}
		return
	}
	log = logger
}

// fingerprint returns a short, non-cryptographic hex fingerprint of buf
// suitable for correlating log lines with BDS stack/tree-hash state. Never
// used for anything security relevant - xxhash is not a cryptographic
// hash.
func fingerprint(buf []byte) string {
	h := xxhash.Sum64(buf)
	return encodeHex(h)
}

const hexDigits = "0123456789abcdef"

func encodeHex(v uint64) string {
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(out)
}
