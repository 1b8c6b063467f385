package refcatalog

import (
	"crypto"
	_ "crypto/md5"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"strings"

	_ "golang.org/x/crypto/blake2b"
	_ "golang.org/x/crypto/blake2s"
	_ "golang.org/x/crypto/ripemd160"
	_ "golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Algorithm names a content-fingerprinting hash. Where each comes from:
// MD5          crypto/md5
// SHA256       crypto/sha256
// SHA512       crypto/sha512
// RIPEMD160    golang.org/x/crypto/ripemd160
// SHA3_256     golang.org/x/crypto/sha3
// BLAKE2b_256  golang.org/x/crypto/blake2b
// BLAKE2s_256  golang.org/x/crypto/blake2s
// BLAKE3       lukechampine.com/blake3 (default; not a standard hash.Hash)
type Algorithm string

// Supported fingerprint algorithms.
const (
	AlgorithmMD5         Algorithm = "MD5"
	AlgorithmSHA256      Algorithm = "SHA256"
	AlgorithmSHA512      Algorithm = "SHA512"
	AlgorithmRIPEMD160   Algorithm = "RIPEMD160"
	AlgorithmSHA3_256    Algorithm = "SHA3_256"
	AlgorithmBLAKE2b_256 Algorithm = "BLAKE2b_256"
	AlgorithmBLAKE2s_256 Algorithm = "BLAKE2s_256"
	AlgorithmBLAKE3      Algorithm = "BLAKE3"

	// AlgorithmDefault is used when building a catalog from scratch.
	AlgorithmDefault = AlgorithmBLAKE3
)

var stdHashes = map[Algorithm]crypto.Hash{
	AlgorithmMD5:         crypto.MD5,
	AlgorithmSHA256:      crypto.SHA256,
	AlgorithmSHA512:      crypto.SHA512,
	AlgorithmRIPEMD160:   crypto.RIPEMD160,
	AlgorithmSHA3_256:    crypto.SHA3_256,
	AlgorithmBLAKE2b_256: crypto.BLAKE2b_256,
	AlgorithmBLAKE2s_256: crypto.BLAKE2s_256,
}

// Fingerprint computes a content fingerprint of the concatenated reference
// text under the named algorithm, adapted from the per-sequence hash
// dispatch this module's lineage uses for sequence identity (hash.go's
// GenericSequenceHash/Blake3SequenceHash), generalized from a single
// annotated sequence to the whole catalog's concatenated text. Falls back
// to BLAKE3 for an unrecognized algorithm name.
func Fingerprint(text []byte, algorithm Algorithm) string {
	if algorithm == AlgorithmBLAKE3 {
		sum := blake3.Sum256(text)
		return hex.EncodeToString(sum[:])
	}

	h, ok := stdHashes[algorithm]
	if !ok || !h.Available() {
		sum := blake3.Sum256(text)
		return hex.EncodeToString(sum[:])
	}

	hasher := h.New()
	hasher.Write(text)
	return hex.EncodeToString(hasher.Sum(nil))
}

// ParseAlgorithm normalizes a user-provided algorithm name (as accepted by
// the `dap fingerprint -a` CLI flag) into an Algorithm, defaulting to
// AlgorithmDefault for unrecognized or empty input.
func ParseAlgorithm(name string) Algorithm {
	trimmed := strings.TrimSpace(name)
	for _, a := range []Algorithm{AlgorithmMD5, AlgorithmSHA256, AlgorithmSHA512, AlgorithmRIPEMD160,
		AlgorithmSHA3_256, AlgorithmBLAKE2b_256, AlgorithmBLAKE2s_256, AlgorithmBLAKE3} {
		if strings.EqualFold(trimmed, string(a)) {
			return a
		}
	}
	return AlgorithmDefault
}
