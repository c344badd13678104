package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
)

const otpDigits = 6

var otpSpace = big.NewInt(1_000_000)

// GenerateOTP devuelve un codigo numerico de 6 digitos tomado de crypto/rand,
// uniforme sobre todo el rango 000000-999999.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// HashOTP calcula el digest que se persiste en lugar del codigo.
func HashOTP(code string) string {
	return digest(code)
}

// VerifyOTP compara en tiempo constante; una entrada malformada simplemente
// no coincide.
func VerifyOTP(candidate, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return constantTimeEqual(digest(candidate), storedHash)
}

func IsValidOTPFormat(code string) bool {
	if len(code) != otpDigits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// HashToken aplica el mismo digest a los refresh tokens antes de guardarlos.
func HashToken(token string) string {
	return digest(token)
}

func digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
