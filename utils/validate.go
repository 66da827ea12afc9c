package utils

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// 国际区号 + 可选空格 + 7 到 12 位号码，例如 +92 3001234567
var phonePattern = regexp.MustCompile(`^\+\d{1,4}\s?\d{7,12}$`)

// ValidatePhone 校验手机号格式
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizePhone 去掉区号后的空格，同一号码的两种写法得到相同结果
func NormalizePhone(phone string) string {
	return strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
}

// MaskPhone 仅保留区号和末四位
func MaskPhone(phone string) string {
	p := NormalizePhone(phone)
	if len(p) <= 6 {
		return p
	}
	return p[:3] + strings.Repeat("*", len(p)-7) + p[len(p)-4:]
}

// ValidateEmail 校验邮箱，只接受裸地址
func ValidateEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".")
}

// MinLength 去除首尾空白后按字符计数
func MinLength(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}
