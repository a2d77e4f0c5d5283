package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// OTP helpers
//
// The plaintext code is only ever held in memory long enough to be mailed;
// storage sees the SHA-256 digest. Issue and verify must use the same digest
// routine so the consume query can match on equality.

// GenOTPCode generates a secure random 6-digit OTP code as a zero-padded string
func GenOTPCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// 6 digits: map random bytes to 000000-999999
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 {
		n = -n
	}
	code := n % 1000000
	return fmt.Sprintf("%06d", code), nil
}

// HashOTPCode returns the hex-encoded SHA-256 digest of a plaintext code
func HashOTPCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// MatchOTPCode compares a stored digest against the digest of a candidate
// code in constant time.
func MatchOTPCode(storedHash, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(HashOTPCode(candidate))) == 1
}
