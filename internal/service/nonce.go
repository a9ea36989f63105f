package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"payment-form-builder/internal/model"
)

const nonceTTL = 15 * time.Minute

// NonceService issues short-lived tokens bound to a form. The session
// endpoint hands one to the rendered form; the submit endpoint requires
// it back, which keeps drive-by POSTs away from intent creation.
type NonceService struct {
	secret []byte
}

func NewNonceService(secret string) *NonceService {
	return &NonceService{secret: []byte(secret)}
}

func (n *NonceService) Issue(formID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"form_id": formID,
		"iat":     now.Unix(),
		"exp":     now.Add(nonceTTL).Unix(),
	})
	return token.SignedString(n.secret)
}

func (n *NonceService) Verify(nonce, formID string) error {
	token, err := jwt.Parse(nonce, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return n.secret, nil
	})
	if err != nil || !token.Valid {
		return model.ErrInvalidNonce
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["form_id"] != formID {
		return model.ErrInvalidNonce
	}
	return nil
}
