package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

var errInvalidHash = errors.New("invalid password hash")

// Hash derives an argon2id key from the plaintext and encodes it together
// with its parameters and a fresh random salt. Hashing the same password
// twice therefore yields different strings.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify re-derives the key using the salt and parameters embedded in the
// encoded hash and compares in constant time. Hashes produced with other
// schemes or argon2 versions are rejected outright.
func Verify(plaintext, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errInvalidHash
	}

	version, err := decodeVersion(parts[2])
	if err != nil || version != argon2.Version {
		return false, errInvalidHash
	}

	memory, timeCost, threads, err := decodeParams(parts[3])
	if err != nil {
		return false, errInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, errInvalidHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, errInvalidHash
	}

	got := argon2.IDKey([]byte(plaintext), salt, timeCost, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func decodeVersion(segment string) (int, error) {
	if !strings.HasPrefix(segment, "v=") {
		return 0, errInvalidHash
	}
	return strconv.Atoi(strings.TrimPrefix(segment, "v="))
}

func decodeParams(segment string) (uint32, uint32, uint8, error) {
	fields := strings.Split(segment, ",")
	if len(fields) != 3 {
		return 0, 0, 0, errInvalidHash
	}

	memory, err := uintField(fields[0], "m=")
	if err != nil {
		return 0, 0, 0, errInvalidHash
	}
	timeCost, err := uintField(fields[1], "t=")
	if err != nil {
		return 0, 0, 0, errInvalidHash
	}
	threads, err := uintField(fields[2], "p=")
	if err != nil || threads > 255 {
		return 0, 0, 0, errInvalidHash
	}
	return memory, timeCost, uint8(threads), nil
}

func uintField(field, prefix string) (uint32, error) {
	if !strings.HasPrefix(field, prefix) {
		return 0, errInvalidHash
	}
	parsed, err := strconv.ParseUint(strings.TrimPrefix(field, prefix), 10, 32)
	if err != nil {
		return 0, errInvalidHash
	}
	return uint32(parsed), nil
}
