// esports-arena/services/attestation_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AttestationClient talks to the identity provider's attestation endpoint to
// confirm a request came from a legitimate client app build.
type AttestationClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewAttestationClient(baseURL, serviceToken string) *AttestationClient {
	return &AttestationClient{
		BaseURL: baseURL,
		Token:   serviceToken,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VerifyAppToken calls /v1/attestation/verify on the identity provider.
// A non-200 response means the token is missing, expired or forged.
func (c *AttestationClient) VerifyAppToken(appToken string) error {
	url := fmt.Sprintf("%s/v1/attestation/verify", c.BaseURL)

	reqBody := map[string]interface{}{
		"app_token": appToken,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal attestation request: %w", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build attestation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("attestation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("attestation rejected (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}
