package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired media token")

// ImageOptions are rendering hints carried in a signed URL.
type ImageOptions struct {
	Width   int    `json:"w,omitempty"`
	Quality int    `json:"q,omitempty"`
	Resize  string `json:"r,omitempty"`
}

// Grant is what a verified media token allows.
type Grant struct {
	Path    string
	Options ImageOptions
	Expires time.Time
}

type mediaClaims struct {
	ImageOptions
	jwt.RegisteredClaims
}

// URLSigner issues and verifies HS256 tokens for media URLs.
type URLSigner struct {
	key     []byte
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewURLSigner(key, baseURL string, ttl time.Duration) *URLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &URLSigner{key: []byte(key), baseURL: strings.TrimRight(baseURL, "/"), ttl: ttl, now: time.Now}
}

// PublicURL returns a URL for p that stays valid for the signer's TTL.
func (s *URLSigner) PublicURL(p string, opts ImageOptions) (string, error) {
	now := s.now()
	claims := mediaClaims{
		ImageOptions: opts,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign media url: %w", err)
	}
	return s.baseURL + "/" + p + "?token=" + url.QueryEscape(token), nil
}

// Verify checks token and returns the path and options it grants.
func (s *URLSigner) Verify(token string) (Grant, error) {
	var claims mediaClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return Grant{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Grant{}, ErrInvalidToken
	}
	g := Grant{Path: claims.Subject, Options: claims.ImageOptions}
	if claims.ExpiresAt != nil {
		g.Expires = claims.ExpiresAt.Time
	}
	return g, nil
}
