package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"FinTrack/config"
)

// HashPhone 加盐哈希手机号，用于唯一性校验和 Redis key，盐 + ":" + phone
func HashPhone(phone string) string {
	sum := sha256.Sum256([]byte(config.Cfg.PhoneHashSalt + ":" + NormalizePhone(phone)))
	return hex.EncodeToString(sum[:])
}
