package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Upload token errors
var (
	ErrUploadTokenInvalid = errors.New("invalid upload token")
	ErrUploadTokenExpired = errors.New("upload token expired")
)

// UploadSignerConfig defines signed upload URL settings
type UploadSignerConfig struct {
	SecretKey string
	TokenTTL  time.Duration
	Issuer    string
}

// UploadSigner issues and verifies short-lived tokens that authorize a single
// direct PUT of file bytes to the upload endpoint. The token binds the target
// file path so a signed URL cannot be replayed against another path.
type UploadSigner struct {
	config UploadSignerConfig
}

// NewUploadSigner creates a new UploadSigner
func NewUploadSigner(config UploadSignerConfig) *UploadSigner {
	return &UploadSigner{config: config}
}

// UploadClaims defines the payload of a signed upload token
type UploadClaims struct {
	FilePath    string `json:"filePath"`
	ContentType string `json:"contentType"`
	UserID      int64  `json:"userId"`
	jwt.RegisteredClaims
}

// Sign creates a token authorizing an upload of the given content type to filePath
func (s *UploadSigner) Sign(userID int64, filePath, contentType string) (string, error) {
	now := time.Now()
	claims := &UploadClaims{
		FilePath:    filePath,
		ContentType: contentType,
		UserID:      userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", userID),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign upload token: %w", err)
	}
	return signed, nil
}

// Verify validates an upload token and returns its claims
func (s *UploadSigner) Verify(tokenString string) (*UploadClaims, error) {
	if tokenString == "" {
		return nil, ErrUploadTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &UploadClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrUploadTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrUploadTokenInvalid, err)
	}

	claims, ok := token.Claims.(*UploadClaims)
	if !ok || !token.Valid || claims.FilePath == "" {
		return nil, ErrUploadTokenInvalid
	}
	return claims, nil
}
