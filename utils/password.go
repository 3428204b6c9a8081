package utils

import "golang.org/x/crypto/bcrypt"

// HashPassphrase returns the bcrypt hash of a profile passphrase.
func HashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassphrase compares the bcrypt hash with its possible plaintext equivalent.
func CheckPassphrase(hash, passphrase string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase)) == nil
}
