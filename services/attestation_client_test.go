package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyAppTokenAccepted(t *testing.T) {
	var gotServiceToken, gotAppToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/attestation/verify" {
			t.Errorf("path = %q, want /v1/attestation/verify", r.URL.Path)
		}
		gotServiceToken = r.Header.Get("X-Service-Token")

		var body struct {
			AppToken string `json:"app_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		gotAppToken = body.AppToken

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewAttestationClient(srv.URL, "svc-secret")
	if err := client.VerifyAppToken("app-token-abc"); err != nil {
		t.Fatalf("VerifyAppToken returned error: %v", err)
	}
	if gotServiceToken != "svc-secret" {
		t.Errorf("service token = %q, want svc-secret", gotServiceToken)
	}
	if gotAppToken != "app-token-abc" {
		t.Errorf("app token = %q, want app-token-abc", gotAppToken)
	}
}

func TestVerifyAppTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewAttestationClient(srv.URL, "svc-secret")
	if err := client.VerifyAppToken("forged"); err == nil {
		t.Fatal("VerifyAppToken returned nil for a rejected token")
	}
}

func TestVerifyAppTokenServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewAttestationClient(srv.URL, "svc-secret")
	if err := client.VerifyAppToken("any"); err == nil {
		t.Fatal("VerifyAppToken returned nil with the service down")
	}
}
