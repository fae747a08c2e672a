package services

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"lotto/domain/entities"
)

// randomCode generates one 6-digit code in [CodeMin, CodeMax]
func randomCode() (string, error) {
	span := big.NewInt(entities.CodeMax - entities.CodeMin + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("random generation failed: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+entities.CodeMin), nil
}

// randomIndex generates a uniform value in [0, n)
func randomIndex(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, fmt.Errorf("random generation failed: %w", err)
	}
	return v.Int64(), nil
}

// randomTwoDigit generates a zero-padded value in [00, 99]
func randomTwoDigit() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		return "", fmt.Errorf("random generation failed: %w", err)
	}
	return fmt.Sprintf("%02d", n.Int64()), nil
}

// sampleDistinct draws count distinct elements from pool uniformly at
// random without replacement, using a partial Fisher-Yates shuffle.
// The pool is copied so callers keep their slice intact.
func sampleDistinct(pool []string, count int) ([]string, error) {
	if count > len(pool) {
		return nil, fmt.Errorf("not enough elements: need %d, have %d", count, len(pool))
	}

	candidates := make([]string, len(pool))
	copy(candidates, pool)

	for i := 0; i < count; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates)-i)))
		if err != nil {
			return nil, fmt.Errorf("random generation failed: %w", err)
		}
		j := i + int(n.Int64())
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}

	return candidates[:count], nil
}
