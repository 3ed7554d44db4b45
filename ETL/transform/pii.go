package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Поддерживаемые алгоритмы хэширования
const (
	HashSHA256  = "sha256"
	HashSHA3    = "sha3-256"
	HashBlake2b = "blake2b-256"
)

// PIIHasher заменяет персональные данные необратимым hex-дайджестом фиксированной длины
type PIIHasher struct {
	algorithm string
	sum       func([]byte) [32]byte
}

// NewPIIHasher создает хэшер для указанного алгоритма
func NewPIIHasher(algorithm string) (*PIIHasher, error) {
	var sum func([]byte) [32]byte
	switch algorithm {
	case HashSHA256, "":
		algorithm = HashSHA256
		sum = sha256.Sum256
	case HashSHA3:
		sum = sha3.Sum256
	case HashBlake2b:
		sum = blake2b.Sum256
	default:
		return nil, fmt.Errorf("неизвестный алгоритм хэширования: %q", algorithm)
	}
	return &PIIHasher{algorithm: algorithm, sum: sum}, nil
}

// Hash возвращает hex-дайджест значения (64 символа)
func (h *PIIHasher) Hash(value string) string {
	digest := h.sum([]byte(value))
	return hex.EncodeToString(digest[:])
}

// Algorithm возвращает имя алгоритма
func (h *PIIHasher) Algorithm() string {
	return h.algorithm
}
