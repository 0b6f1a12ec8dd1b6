package natsadapter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nats "github.com/nats-io/nats.go"
)

type stubParser struct {
	token  *jwt.Token
	claims jwt.MapClaims
	err    error
}

func (p *stubParser) ParseAccessToken(string) (*jwt.Token, jwt.MapClaims, error) {
	return p.token, p.claims, p.err
}

func capture(h *VerifyHandler) *verifyResponse {
	var got verifyResponse
	h.respondFn = func(_ *nats.Msg, resp verifyResponse) { got = resp }
	return &got
}

func verifyMsg(t *testing.T, token string) *nats.Msg {
	t.Helper()
	data, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return &nats.Msg{Data: data}
}

func TestHandleValidToken(t *testing.T) {
	parser := &stubParser{
		token: &jwt.Token{Valid: true},
		claims: jwt.MapClaims{
			"sub": map[string]interface{}{
				"id":         "user-1",
				"email":      "a@x.com",
				"firstName":  "Max",
				"secondName": "Galant",
				"role":       "user",
			},
			"exp": float64(time.Now().Add(time.Hour).Unix()),
		},
	}
	h := NewVerifyHandler(parser)
	got := capture(h)

	h.handle(verifyMsg(t, "token"))

	if !got.OK || got.Error != "" {
		t.Fatalf("unexpected response: %+v", got)
	}
	if got.UserID != "user-1" || got.Email != "a@x.com" || got.Role != "user" {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestHandleExpiredToken(t *testing.T) {
	parser := &stubParser{
		token: &jwt.Token{Valid: true},
		claims: jwt.MapClaims{
			"sub": map[string]interface{}{"id": "user-1"},
			"exp": float64(time.Now().Add(-time.Minute).Unix()),
		},
	}
	h := NewVerifyHandler(parser)
	got := capture(h)

	h.handle(verifyMsg(t, "token"))

	if got.OK || got.Error != "expired" {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestHandleInvalidToken(t *testing.T) {
	parser := &stubParser{err: jwt.ErrTokenMalformed}
	h := NewVerifyHandler(parser)
	got := capture(h)

	h.handle(verifyMsg(t, "garbage"))

	if got.OK || got.Error != "invalid_token" {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestHandleMissingSubject(t *testing.T) {
	parser := &stubParser{
		token: &jwt.Token{Valid: true},
		claims: jwt.MapClaims{
			"exp": float64(time.Now().Add(time.Hour).Unix()),
		},
	}
	h := NewVerifyHandler(parser)
	got := capture(h)

	h.handle(verifyMsg(t, "token"))

	if got.OK || got.Error != "subject_missing" {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	h := NewVerifyHandler(&stubParser{})
	got := capture(h)

	h.handle(&nats.Msg{Data: []byte("{not json")})

	if got.OK || got.Error != "invalid_payload" {
		t.Fatalf("unexpected response: %+v", got)
	}
}
