package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kmori/junban/internal/config"
)

func postSession(t *testing.T, cfg config.Config, secret string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.POST("/v1/auth/session", NewAuthHandler(cfg).CreateSession)

	body, _ := json.Marshal(map[string]string{"secret": secret})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/session", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	resp := httptest.NewRecorder()
	e.ServeHTTP(resp, req)
	return resp
}

func TestCreateSession(t *testing.T) {
	gated := config.Config{SharedSecret: "irasshai", SessionSecret: "sign", SessionTTLMin: 60}
	open := config.Config{SessionSecret: "sign", SessionTTLMin: 60}

	cases := map[string]struct {
		cfg      config.Config
		secret   string
		wantCode int
	}{
		"correct secret":         {gated, "irasshai", http.StatusCreated},
		"wrong secret":           {gated, "nope", http.StatusUnauthorized},
		"empty secret":           {gated, "", http.StatusUnauthorized},
		"open mode ignores body": {open, "", http.StatusCreated},
	}
	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postSession(t, tt.cfg, tt.secret)
			if resp.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d (body=%s)", resp.Code, tt.wantCode, resp.Body.String())
			}
			if tt.wantCode == http.StatusCreated {
				var out sessionResp
				if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
					t.Fatal(err)
				}
				if out.Token == "" {
					t.Fatal("empty session token")
				}
			}
		})
	}
}
