package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

var errHashFormat = errors.New("invalid hash format")

// PasswordHasher 加盐单向哈希；Verify 同时识别 bcrypt 与 argon2id 编码，切换算法后旧哈希仍可登录
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encoded string) (bool, error)
}

func NewPasswordHasher(algorithm string, bcryptCost int) (PasswordHasher, error) {
	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		if bcryptCost == 0 {
			bcryptCost = bcrypt.DefaultCost
		}
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", bcryptCost)
		}
		return BcryptHasher{Cost: bcryptCost}, nil
	case AlgorithmArgon2id:
		return Argon2Hasher{}, nil
	}
	return nil, fmt.Errorf("unsupported password algorithm: %s", algorithm)
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(plain, encoded string) (bool, error) {
	return verifyPassword(plain, encoded)
}

// Argon2Hasher 编码格式 argon2id$t$m$p$k$salt$hash
type Argon2Hasher struct{}

const (
	argonTime    = uint32(1)
	argonMemory  = uint32(64 * 1024)
	argonThreads = uint8(4)
	argonKeyLen  = uint32(32)
	argonSaltLen = 16
)

func (Argon2Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	h := argon2.IDKey([]byte(plain), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	sEnc := base64.RawStdEncoding.EncodeToString(salt)
	hEnc := base64.RawStdEncoding.EncodeToString(h)

	return fmt.Sprintf("argon2id$%d$%d$%d$%d$%s$%s", argonTime, argonMemory, argonThreads, argonKeyLen, sEnc, hEnc), nil
}

func (Argon2Hasher) Verify(plain, encoded string) (bool, error) {
	return verifyPassword(plain, encoded)
}

func verifyPassword(plain, encoded string) (bool, error) {
	if strings.HasPrefix(encoded, AlgorithmArgon2id+"$") {
		return verifyArgon2(plain, encoded)
	}
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func verifyArgon2(plain, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 7 {
		return false, errHashFormat
	}

	var t, m, k uint32
	var p uint8
	if _, err := fmt.Sscanf(strings.Join(parts[1:5], " "), "%d %d %d %d", &t, &m, &p, &k); err != nil {
		return false, fmt.Errorf("%w: %v", errHashFormat, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, err
	}
	have, err := base64.RawStdEncoding.DecodeString(parts[6])
	if err != nil {
		return false, err
	}

	want := argon2.IDKey([]byte(plain), salt, t, m, p, k)
	if len(want) != len(have) {
		return false, nil
	}
	return subtle.ConstantTimeCompare(want, have) == 1, nil
}
