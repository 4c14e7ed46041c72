// backend/pkg/utils/session.go
package utils

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
)

const MaxSessionIDLength = 128

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NewSessionID returns a random UUID session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// MD5Hash generates MD5 hash of input string
func MD5Hash(input string) string {
	hash := md5.Sum([]byte(input))
	return hex.EncodeToString(hash[:])
}

// ValidateSessionID accepts 1 to 128 URL-safe characters.
func ValidateSessionID(sessionID string) bool {
	if len(sessionID) == 0 || len(sessionID) > MaxSessionIDLength {
		return false
	}
	return sessionIDPattern.MatchString(sessionID)
}
