package token

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"
)

// Verification errors. Callers map all three to an unauthorized response but
// may log them distinctly.
var (
	ErrMalformedToken   = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token has expired")
)

// Claims is the decoded payload of a session token.
type Claims struct {
	UserID    int64
	Email     string
	ExpiresAt time.Time
}

type customClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Issuer signs and verifies HS256 session tokens with a process-wide secret.
// Both operations are pure computation and safe for concurrent use.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer constructs an Issuer. The configured secret is stretched to a
// 32-byte HMAC key, so it always satisfies the HS256 minimum key size no
// matter how short the configured string is. The key is read-only after
// startup.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	key := sha256.Sum256([]byte(secret))
	return &Issuer{secret: key[:], ttl: ttl}
}

// Issue produces a signed bearer token bound to the user identity, expiring
// after the configured TTL.
func (i *Issuer) Issue(userID int64, email string) (string, error) {
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.HS256, Key: i.secret},
		(&gojose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := time.Now().UTC()
	std := gojwt.Claims{
		Subject:  strconv.FormatInt(userID, 10),
		IssuedAt: gojwt.NewNumericDate(now),
		Expiry:   gojwt.NewNumericDate(now.Add(i.ttl)),
	}
	custom := customClaims{UserID: userID, Email: email}

	raw, err := gojwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize token: %w", err)
	}
	return raw, nil
}

// Verify checks the signature and expiry of a bearer token and returns its
// claims. Any structurally valid, unexpired, correctly signed token is
// accepted; there is no revocation list.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	parsed, err := gojwt.ParseSigned(raw, []gojose.SignatureAlgorithm{gojose.HS256})
	if err != nil {
		return nil, ErrMalformedToken
	}

	var std gojwt.Claims
	var custom customClaims
	if err := parsed.Claims(i.secret, &std, &custom); err != nil {
		return nil, ErrInvalidSignature
	}

	if err := std.Validate(gojwt.Expected{Time: time.Now()}); err != nil {
		if errors.Is(err, gojwt.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrMalformedToken
	}

	if std.Expiry == nil {
		return nil, ErrMalformedToken
	}

	return &Claims{
		UserID:    custom.UserID,
		Email:     custom.Email,
		ExpiresAt: std.Expiry.Time(),
	}, nil
}
