package auth

import (
	"fmt"

	"github.com/KiranSurya-SU/alumniconnect/internal/models"
	"github.com/KiranSurya-SU/alumniconnect/internal/ws"
	"gorm.io/gorm"
)

// TokenVerifier 校验 WebSocket 握手时携带的 access token，实现 ws.Verifier。
type TokenVerifier struct {
	db     *gorm.DB
	secret string
}

func NewTokenVerifier(db *gorm.DB, secret string) *TokenVerifier {
	return &TokenVerifier{db: db, secret: secret}
}

func (v *TokenVerifier) Verify(token string) (ws.Identity, error) {
	if token == "" {
		return ws.Identity{}, fmt.Errorf("%w: missing token", ErrAuthentication)
	}
	claims, err := ParseAccessToken(token, v.secret)
	if err != nil {
		return ws.Identity{}, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	var user models.User
	if err := v.db.First(&user, claims.UserID).Error; err != nil {
		return ws.Identity{}, fmt.Errorf("%w: user not found", ErrAuthentication)
	}
	return ws.Identity{ID: user.ID, Name: user.DisplayName()}, nil
}
