package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	jwttoken "custody/internal/jwt_token"
	"custody/internal/platform/config"
	id "custody/pkg/domain"
)

// TestContext carries HTTP state between the steps of one scenario.
type TestContext struct {
	BaseURL string
	client  *http.Client
	tokens  *jwttoken.JWTService

	actors      map[string]id.Address
	accessToken string
	lastStatus  int
	lastHeader  http.Header
	lastBody    []byte
	assetID     uint64
}

// NewTestContext reads the target server from CUSTODY_E2E_BASE_URL and signs
// tokens with the same key and claims the server validates.
func NewTestContext() *TestContext {
	baseURL := os.Getenv("CUSTODY_E2E_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &TestContext{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		tokens: jwttoken.NewJWTService(
			envOr("CUSTODY_JWT_SIGNING_KEY", config.DevSigningKey),
			envOr("CUSTODY_JWT_ISSUER", "custody"),
			envOr("CUSTODY_JWT_AUDIENCE", "custody-api"),
		),
		actors: map[string]id.Address{},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.actors = map[string]id.Address{}
	tc.accessToken = ""
	tc.lastStatus = 0
	tc.lastHeader = nil
	tc.lastBody = nil
	tc.assetID = 0
}

func (tc *TestContext) SetActor(name string, address id.Address) {
	tc.actors[name] = address
}

func (tc *TestContext) Actor(name string) (id.Address, error) {
	address, ok := tc.actors[name]
	if !ok {
		return id.ZeroAddress, fmt.Errorf("unknown actor %q", name)
	}
	return address, nil
}

// AuthenticateAs mints a bearer token for the named actor and uses it for
// every following request.
func (tc *TestContext) AuthenticateAs(name string) error {
	address, err := tc.Actor(name)
	if err != nil {
		return err
	}
	token, err := tc.tokens.GenerateAccessToken(address, time.Hour)
	if err != nil {
		return fmt.Errorf("mint token: %w", err)
	}
	tc.accessToken = token
	return nil
}

func (tc *TestContext) GetAccessToken() string {
	return tc.accessToken
}

func (tc *TestContext) SetAccessToken(token string) {
	tc.accessToken = token
}

func (tc *TestContext) SetAssetID(assetID uint64) {
	tc.assetID = assetID
}

func (tc *TestContext) GetAssetID() uint64 {
	return tc.assetID
}

func (tc *TestContext) POST(path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	return tc.do(http.MethodPost, path, reader, nil)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequest(method, tc.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	return nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

func (tc *TestContext) GetLastResponseHeader(name string) string {
	if tc.lastHeader == nil {
		return ""
	}
	return tc.lastHeader.Get(name)
}

func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var body map[string]interface{}
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("decode response %q: %w", string(tc.lastBody), err)
	}
	value, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not found in response %s", field, string(tc.lastBody))
	}
	return value, nil
}

func (tc *TestContext) ResponseContains(field string) bool {
	_, err := tc.GetResponseField(field)
	return err == nil
}
