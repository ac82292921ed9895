package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
)

func newCallbackConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8888/callback",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenURL},
	}
}

func TestCallbackHandler(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok123","token_type":"Bearer"}`))
	}))
	defer tokenSrv.Close()

	t.Run("Exchanges Code For Token", func(t *testing.T) {
		handler := NewCallbackHandler(newCallbackConfig(tokenSrv.URL), "st4te")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=st4te&code=c0de", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Err != nil {
			t.Fatalf("expected no error, got %v", result.Err)
		}
		if result.Token.AccessToken != "tok123" {
			t.Errorf("unexpected token %q", result.Token.AccessToken)
		}
	})

	t.Run("Rejects State Mismatch", func(t *testing.T) {
		handler := NewCallbackHandler(newCallbackConfig(tokenSrv.URL), "expected")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=forged&code=c0de", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-handler.Result()
		if !errors.Is(result.Err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Err)
		}
	})

	t.Run("Surfaces Provider Denial", func(t *testing.T) {
		handler := NewCallbackHandler(newCallbackConfig(tokenSrv.URL), "st4te")

		params := url.Values{
			"state":             {"st4te"},
			"error":             {"access_denied"},
			"error_description": {"user declined"},
		}
		req := httptest.NewRequest(http.MethodGet, "/callback?"+params.Encode(), nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		result := <-handler.Result()
		if result.Err == nil || !strings.Contains(result.Err.Error(), "access_denied") {
			t.Errorf("expected denial error, got %v", result.Err)
		}
	})

	t.Run("Second Callback Is Rejected", func(t *testing.T) {
		handler := NewCallbackHandler(newCallbackConfig(tokenSrv.URL), "st4te")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=st4te&code=c0de", nil))

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?state=st4te&code=c0de", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("expected 400 on replay, got %d", second.Code)
		}
	})
}
