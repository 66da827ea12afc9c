package token

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"FinTrack/config"
)

const (
	IdentityKey = "uid"

	tokenTypeRefresh = "refresh"
)

var (
	ErrGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrInvalidToken            = errors.New("invalid token")
	ErrInvalidTokenType        = errors.New("token is not a refresh token")
	ErrMissingUserID           = errors.New("token has no user id")
)

// middleware 和 token 签发共用同一份密钥与时效配置
var sharedGenerator *jwt.HertzJWTMiddleware

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		MaxRefresh:  time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	return nil
}

// GetGenerator 获取共享的 token 配置
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// Pair 一组 access / refresh token
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// GenerateTokenPair 生成 access token 和 refresh token
func GenerateTokenPair(userID string) (*Pair, error) {
	if sharedGenerator == nil {
		return nil, ErrGeneratorNotInitialized
	}

	now := sharedGenerator.TimeFunc()
	expiresAt := now.Add(sharedGenerator.Timeout)
	secret := sharedGenerator.Key

	access, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		IdentityKey: userID,
		"iat":       now.Unix(),
		"orig_iat":  now.Unix(),
		"exp":       expiresAt.Unix(),
	}).SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		IdentityKey: userID,
		"iat":       now.Unix(),
		"type":      tokenTypeRefresh,
		"exp":       now.Add(sharedGenerator.MaxRefresh).Unix(),
	}).SignedString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(sharedGenerator.Timeout.Seconds()),
	}, nil
}

// ValidateRefreshToken 验证 refresh token 并返回用户 ID
func ValidateRefreshToken(tokenString string) (string, error) {
	if sharedGenerator == nil {
		return "", ErrGeneratorNotInitialized
	}

	claims := jwtv5.MapClaims{}
	parsed, err := jwtv5.ParseWithClaims(tokenString, claims, func(*jwtv5.Token) (interface{}, error) {
		return sharedGenerator.Key, nil
	}, jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}), jwtv5.WithTimeFunc(sharedGenerator.TimeFunc))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	if tokenType, _ := claims["type"].(string); tokenType != tokenTypeRefresh {
		return "", ErrInvalidTokenType
	}

	return UserIDFromClaims(claims)
}

// UserIDFromClaims 兼容字符串和数字两种 uid
func UserIDFromClaims(claims map[string]interface{}) (string, error) {
	switch uid := claims[IdentityKey].(type) {
	case string:
		if uid != "" {
			return uid, nil
		}
	case float64:
		return fmt.Sprintf("%.0f", uid), nil
	}
	return "", ErrMissingUserID
}
