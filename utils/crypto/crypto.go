package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
)

// TokenLength is the byte length of generated opaque tokens
const TokenLength = 32

// GenerateToken returns a cryptographically secure random hex token,
// used for password reset links.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenLength)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SignHMAC returns the hex-encoded HMAC-SHA256 of message under secret.
// Razorpay signs order_id|payment_id this way during checkout.
func SignHMAC(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyHMAC reports whether signature is the valid HMAC-SHA256 of message
// under secret. Comparison is constant-time.
func VerifyHMAC(message, signature, secret string) bool {
	expected := SignHMAC(message, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
