package utils

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// GenerateSessionID creates a random hex session identifier.
func GenerateSessionID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("session_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}

// NewQueryID returns a unique identifier for one classified query,
// in the form query-<unix millis>-<random suffix>.
func NewQueryID() string {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("query-%d-%d", time.Now().UnixMilli(), time.Now().UnixNano()%100000)
	}
	return fmt.Sprintf("query-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(bytes))
}

// MD5Hash returns the hex MD5 digest of the input, used for cache keys.
func MD5Hash(input string) string {
	hash := md5.Sum([]byte(input))
	return hex.EncodeToString(hash[:])
}
