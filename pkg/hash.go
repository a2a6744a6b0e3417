package blockdupes

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/crc32"
	"golang.org/x/crypto/blake2b"
)

// Digest is the hash of a single block. Digests of the same algorithm compare with ==.
type Digest string

// Hex returns the lower-case hex encoding of the digest
func (d Digest) Hex() string {
	return hex.EncodeToString([]byte(d))
}

// HashAlgorithm computes a fixed-size digest of one block.
// Implementations must be safe for concurrent use.
type HashAlgorithm interface {
	Name() string
	TypeID() uint16
	Size() int
	Digest(block []byte) Digest
}

// DefaultBlake2bSize is the digest length used by the generic hash when none is configured
const DefaultBlake2bSize = 32

// GetHashAlgorithm returns the hash algorithm for the given name
func GetHashAlgorithm(name string) (HashAlgorithm, error) {
	return GetHashAlgorithmWithSize(name, 0)
}

// GetHashAlgorithmWithSize returns the hash algorithm for the given name.
// digestSize only applies to blake2b; zero selects DefaultBlake2bSize.
func GetHashAlgorithmWithSize(name string, digestSize int) (HashAlgorithm, error) {
	typeID, ok := HashTypeFromName(name)
	if !ok {
		return nil, ConfigErrorf("unsupported hash algorithm: %s (supported: %s)", name, strings.Join(SupportedHashNames(), ", "))
	}

	switch typeID {
	case HashTypeCRC32:
		return crc32Algorithm{}, nil
	case HashTypeXXHash:
		return xxhashAlgorithm{}, nil
	case HashTypeBlake2b:
		if digestSize == 0 {
			digestSize = DefaultBlake2bSize
		}
		if digestSize < 16 || digestSize > blake2b.Size {
			return nil, ConfigErrorf("invalid blake2b digest size %d (supported: 16-%d)", digestSize, blake2b.Size)
		}
		return blake2bAlgorithm{size: digestSize}, nil
	case HashTypeMD5:
		return md5Algorithm{}, nil
	case HashTypeSHA1:
		return sha1Algorithm{}, nil
	case HashTypeSHA256:
		return sha256Algorithm{}, nil
	case HashTypeSHA512:
		return sha512Algorithm{}, nil
	}
	return nil, ConfigErrorf("unsupported hash type ID: %d", typeID)
}

type crc32Algorithm struct{}

func (crc32Algorithm) Name() string   { return "crc32" }
func (crc32Algorithm) TypeID() uint16 { return HashTypeCRC32 }
func (crc32Algorithm) Size() int      { return HashSizeCRC32 }

func (crc32Algorithm) Digest(block []byte) Digest {
	var out [HashSizeCRC32]byte
	binary.BigEndian.PutUint32(out[:], crc32.ChecksumIEEE(block))
	return Digest(out[:])
}

type xxhashAlgorithm struct{}

func (xxhashAlgorithm) Name() string   { return "xxhash" }
func (xxhashAlgorithm) TypeID() uint16 { return HashTypeXXHash }
func (xxhashAlgorithm) Size() int      { return HashSizeXXHash }

func (xxhashAlgorithm) Digest(block []byte) Digest {
	var out [HashSizeXXHash]byte
	binary.BigEndian.PutUint64(out[:], xxhash.Sum64(block))
	return Digest(out[:])
}

// blake2bAlgorithm is the variable-length generic hash
type blake2bAlgorithm struct {
	size int
}

func (blake2bAlgorithm) Name() string   { return "blake2b" }
func (blake2bAlgorithm) TypeID() uint16 { return HashTypeBlake2b }
func (a blake2bAlgorithm) Size() int    { return a.size }

func (a blake2bAlgorithm) Digest(block []byte) Digest {
	if a.size == blake2b.Size256 {
		sum := blake2b.Sum256(block)
		return Digest(sum[:])
	}
	// New only fails for a bad size or an oversized key, both ruled out at construction
	h, _ := blake2b.New(a.size, nil)
	h.Write(block)
	return Digest(h.Sum(nil))
}

type md5Algorithm struct{}

func (md5Algorithm) Name() string   { return "md5" }
func (md5Algorithm) TypeID() uint16 { return HashTypeMD5 }
func (md5Algorithm) Size() int      { return HashSizeMD5 }

func (md5Algorithm) Digest(block []byte) Digest {
	sum := md5.Sum(block)
	return Digest(sum[:])
}

type sha1Algorithm struct{}

func (sha1Algorithm) Name() string   { return "sha1" }
func (sha1Algorithm) TypeID() uint16 { return HashTypeSHA1 }
func (sha1Algorithm) Size() int      { return HashSizeSHA1 }

func (sha1Algorithm) Digest(block []byte) Digest {
	sum := sha1.Sum(block)
	return Digest(sum[:])
}

type sha256Algorithm struct{}

func (sha256Algorithm) Name() string   { return "sha256" }
func (sha256Algorithm) TypeID() uint16 { return HashTypeSHA256 }
func (sha256Algorithm) Size() int      { return HashSizeSHA256 }

func (sha256Algorithm) Digest(block []byte) Digest {
	sum := sha256.Sum256(block)
	return Digest(sum[:])
}

type sha512Algorithm struct{}

func (sha512Algorithm) Name() string   { return "sha512" }
func (sha512Algorithm) TypeID() uint16 { return HashTypeSHA512 }
func (sha512Algorithm) Size() int      { return HashSizeSHA512 }

func (sha512Algorithm) Digest(block []byte) Digest {
	sum := sha512.Sum512(block)
	return Digest(sum[:])
}
