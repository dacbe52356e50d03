package handlers

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeFaceImagePlainBase64(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xe0}
	decoded, err := decodeFaceImage(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("decodeFaceImage failed: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Errorf("decoded bytes differ: %v != %v", decoded, raw)
	}
}

func TestDecodeFaceImageDataURL(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xe0}
	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	decoded, err := decodeFaceImage(encoded)
	if err != nil {
		t.Fatalf("decodeFaceImage failed: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Errorf("decoded bytes differ: %v != %v", decoded, raw)
	}
}

func TestDecodeFaceImageInvalid(t *testing.T) {
	if _, err := decodeFaceImage("!!not base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func postRegister(t *testing.T, eh *EmployeeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	eh.Register(rec, req)
	return rec
}

func TestRegisterRequiresEmail(t *testing.T) {
	eh := &EmployeeHandler{}

	rec := postRegister(t, eh, `{"employee_id":"EMP001","name":"Alice"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing email should be rejected, got %d", rec.Code)
	}
}

func TestRegisterRejectsMalformedEmail(t *testing.T) {
	eh := &EmployeeHandler{}

	for _, email := range []string{"not-an-address", "@example.com", "alice@"} {
		rec := postRegister(t, eh, `{"employee_id":"EMP001","name":"Alice","email":"`+email+`"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("email %q should be rejected, got %d", email, rec.Code)
		}
	}
}

func TestRegisterRequiresIdentityFields(t *testing.T) {
	eh := &EmployeeHandler{}

	rec := postRegister(t, eh, `{"email":"alice@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing employee_id and name should be rejected, got %d", rec.Code)
	}
}
