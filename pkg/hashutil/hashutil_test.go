package hashutil_test

import (
	"encoding/hex"
	"testing"

	"github.com/rohmanhakim/magnet-resolver/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func TestHashBytes_KnownVectors(t *testing.T) {
	tests := []struct {
		name     string
		algo     hashutil.HashAlgo
		input    string
		expected string
	}{
		{name: "md5 empty", algo: hashutil.HashAlgoMD5, input: "", expected: "d41d8cd98f00b204e9800998ecf8427e"},
		{name: "md5 abc", algo: hashutil.HashAlgoMD5, input: "abc", expected: "900150983cd24fb0d6963f7d28e17f72"},
		{name: "md5 hello world", algo: hashutil.HashAlgoMD5, input: "hello world", expected: "5eb63bbbe01eeed093cb22bb8f5acdc3"},
		{name: "sha256 empty", algo: hashutil.HashAlgoSHA256, input: "", expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{name: "sha256 abc", algo: hashutil.HashAlgoSHA256, input: "abc", expected: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{name: "blake3 empty", algo: hashutil.HashAlgoBLAKE3, input: "", expected: "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{name: "blake3 abc", algo: hashutil.HashAlgoBLAKE3, input: "abc", expected: "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := hashutil.HashBytes([]byte(tt.input), tt.algo)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHashBytes_BLAKE3MatchesLibrary(t *testing.T) {
	data := []byte("The quick brown fox jumps over the lazy dog")

	result, err := hashutil.HashBytes(data, hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)

	expectedHash := blake3.Sum256(data)
	assert.Equal(t, hex.EncodeToString(expectedHash[:]), result)
}

func TestHashBytes_UnsupportedAlgorithm(t *testing.T) {
	result, err := hashutil.HashBytes([]byte("test data"), "crc32")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported hash algorithm")
	assert.Empty(t, result)
}

func TestHashBytes_OutputLength(t *testing.T) {
	data := []byte("test")

	md5Hash, _ := hashutil.HashBytes(data, hashutil.HashAlgoMD5)
	assert.Len(t, md5Hash, 32)

	sha256Hash, _ := hashutil.HashBytes(data, hashutil.HashAlgoSHA256)
	assert.Len(t, sha256Hash, 64)

	blake3Hash, _ := hashutil.HashBytes(data, hashutil.HashAlgoBLAKE3)
	assert.Len(t, blake3Hash, 64)
}

func TestMustHashString_FallsBackToMD5(t *testing.T) {
	assert.Equal(t,
		hashutil.MustHashString("abc", hashutil.HashAlgoMD5),
		hashutil.MustHashString("abc", "unknown"),
	)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, hashutil.IsSupported(hashutil.HashAlgoMD5))
	assert.True(t, hashutil.IsSupported(hashutil.HashAlgoSHA256))
	assert.True(t, hashutil.IsSupported(hashutil.HashAlgoBLAKE3))
	assert.False(t, hashutil.IsSupported("sha1"))
}
