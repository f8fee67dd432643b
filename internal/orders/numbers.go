package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const suffixLen = 9

// NewOrderNumber builds a human-readable order number from a millisecond
// timestamp prefix and a random base36 suffix. Collisions are improbable but
// not impossible; the storage layer's unique constraint is the backstop and
// Create retries generation on conflict.
func NewOrderNumber() string {
	buf := make([]byte, suffixLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("orders: rand.Read: %v", err))
	}
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), buf)
}
