package order

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Viewer is whoever is asking to see an order: an authenticated user, a guest
// holding grant codes, or both.
type Viewer struct {
	UserID *uuid.UUID
	Codes  []string
}

// CanView decides whether the viewer may see the order. Owned orders are
// visible to their owner only; guest orders are visible to anyone holding a
// grant for the order's code.
func CanView(v Viewer, o *Order) bool {
	if o.UserID != nil {
		return v.UserID != nil && *v.UserID == *o.UserID
	}
	for _, code := range v.Codes {
		if code == o.Code {
			return true
		}
	}
	return false
}

// grantClaims carry the order codes a guest browser has been granted access
// to. The token replaces the old server-side session list: it is signed,
// expires, and lives entirely client-side.
type grantClaims struct {
	Codes []string `json:"codes"`
	jwt.RegisteredClaims
}

// Grants issues and verifies guest order-access tokens.
type Grants struct {
	secret []byte
	ttl    time.Duration
}

func NewGrants(secret string) *Grants {
	return &Grants{secret: []byte(secret), ttl: 30 * 24 * time.Hour}
}

// Issue signs a token carrying the given codes.
func (g *Grants) Issue(codes []string) (string, error) {
	claims := &grantClaims{
		Codes: codes,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(g.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Parse returns the codes in a token, or nil for anything invalid or expired.
// A bad grant cookie is never an error, it just grants nothing.
func (g *Grants) Parse(tokenStr string) []string {
	token, err := jwt.ParseWithClaims(tokenStr, &grantClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	})
	if err != nil {
		return nil
	}
	claims, ok := token.Claims.(*grantClaims)
	if !ok || !token.Valid {
		return nil
	}
	return claims.Codes
}

// Grant returns the code set extended with code, without duplicates.
func Grant(codes []string, code string) []string {
	code = NormalizeCode(code)
	if code == "" {
		return codes
	}
	for _, c := range codes {
		if c == code {
			return codes
		}
	}
	return append(codes, code)
}
