package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

func TestCredentialHandler_Get(t *testing.T) {
	issued := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	handler := NewCredentialHandler(&stubCredentials{stored: map[string]*ports.StoredCredential{
		"h1": {Handle: "h1", Credential: "eyJ.signed.pass", VerificationAddress: "https://visit.test/requests/r1", IssuedAt: issued},
	}})

	c, rec := newContext(http.MethodGet, "/credentials/h1", "")
	c.SetParamNames("handle")
	c.SetParamValues("h1")
	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp credentialResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Credential != "eyJ.signed.pass" || resp.VerificationAddress != "https://visit.test/requests/r1" || !resp.IssuedAt.Equal(issued) {
		t.Fatalf("unexpected response %+v", resp)
	}

	c, _ = newContext(http.MethodGet, "/credentials/expired", "")
	c.SetParamNames("handle")
	c.SetParamValues("expired")
	if err := handler.Get(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
