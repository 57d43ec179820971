package services

import (
	"context"
	"errors"
	"strings"

	"trophy-progression-system/models"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityProvider turns a bearer credential into a verified identity.
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// IdentityClaims is the payload issued by the platform's auth service.
type IdentityClaims struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Avatar   string   `json:"avatar,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	Secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{Secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, Unauthorized("missing token")
	}
	claims := &IdentityClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, Unauthorized("token expired")
		}
		return nil, Unauthorized("invalid token")
	}
	return claimsToIdentity(claims.UserID, claims.Subject, claims.Username, claims.Avatar, claims.Roles)
}

func claimsToIdentity(userID, subject, username, avatar string, roles []string) (*models.Identity, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = strings.TrimSpace(subject)
	}
	if userID == "" {
		return nil, Unauthorized("invalid token")
	}
	set := models.NewRoleSet(roles...)
	if len(set) == 0 {
		set = models.NewRoleSet(string(models.RoleUser))
	}
	return &models.Identity{
		UserID:    userID,
		Username:  strings.TrimSpace(username),
		AvatarURL: strings.TrimSpace(avatar),
		Roles:     set,
	}, nil
}
