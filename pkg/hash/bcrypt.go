// Package hash 提供基于 bcrypt 的凭证哈希。
package hash

import "golang.org/x/crypto/bcrypt"

// HashSecret 使用 bcrypt 对凭证进行哈希处理。
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckSecretHash 比较明文凭证与哈希值是否匹配。
func CheckSecretHash(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
