package hashutil

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoMD5    HashAlgo = "md5"
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// IsSupported reports whether algo is one of the known hash algorithms.
func IsSupported(algo HashAlgo) bool {
	switch algo {
	case HashAlgoMD5, HashAlgoSHA256, HashAlgoBLAKE3:
		return true
	default:
		return false
	}
}

// HashBytes returns the hash of bytes as a hex string using the specified algorithm.
// Supported algorithms: "md5", "sha256" and "blake3".
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoMD5:
		return hashBytesMD5(data), nil
	case HashAlgoSHA256:
		return hashBytesSha256(data), nil
	case HashAlgoBLAKE3:
		return hashBytesBlake3(data), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// MustHashString hashes s with an algorithm already checked by IsSupported.
// It falls back to md5 for unknown algorithms instead of failing.
func MustHashString(s string, algo HashAlgo) string {
	if !IsSupported(algo) {
		algo = HashAlgoMD5
	}
	hash, _ := HashBytes([]byte(s), algo)
	return hash
}

// md5 is used for key compatibility only, never for integrity.
func hashBytesMD5(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}

func hashBytesSha256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func hashBytesBlake3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
