package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 自定义JWT Claims
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发与校验 JWT
type TokenIssuer struct {
	secret []byte
	expire time.Duration
	issuer string
}

// NewTokenIssuer 创建 TokenIssuer，expire 为 token 有效期
func NewTokenIssuer(secret string, expire time.Duration) *TokenIssuer {
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), expire: expire, issuer: "newsroom-api"}
}

// GenerateToken 生成JWT Token
func (t *TokenIssuer) GenerateToken(userID, role, email string) (string, *time.Time, error) {
	now := time.Now()
	expireTime := now.Add(t.expire)

	claims := Claims{
		UserID: userID,
		Role:   role,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.issuer,
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := tokenClaims.SignedString(t.secret)
	if err != nil {
		return "", nil, err
	}
	return token, &expireTime, nil
}

// ParseToken 验证JWT Token
func (t *TokenIssuer) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}
