package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost bcrypt 成本因子（固定 10）
const PasswordCost = 10

// MaxPasswordBytes bcrypt 只接受 72 字节以内的明文，入口校验需同步
const MaxPasswordBytes = 72

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
