package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest bcrypt cost the service accepts. Configured
// costs below this are raised to it.
const MinCost = 10

// HashPassword hashes a plaintext password with bcrypt at the given
// cost factor
func HashPassword(password string, cost int) (string, error) {
	if cost < MinCost {
		cost = MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
