// Package server runs the short-lived localhost HTTP listener that
// receives the OAuth authorization callback during interactive login.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
)

// CallbackResult carries the outcome of one authorization flow.
type CallbackResult struct {
	Token *oauth2.Token
	Err   error
}

// CallbackHandler exchanges the authorization code delivered to the
// redirect URI for a token. It accepts exactly one callback per flow.
type CallbackHandler struct {
	config  *oauth2.Config
	state   string
	results chan CallbackResult
	once    sync.Once
	mu      sync.Mutex
	done    bool
}

// NewCallbackHandler creates a handler bound to a state token. The state
// should be random per flow; shared.GenerateID works.
func NewCallbackHandler(config *oauth2.Config, state string) *CallbackHandler {
	return &CallbackHandler{
		config:  config,
		state:   state,
		results: make(chan CallbackResult, 1),
	}
}

// Result yields exactly one CallbackResult, then the channel closes.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.results
}

func (h *CallbackHandler) send(result CallbackResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		http.Error(w, "callback already processed", http.StatusBadRequest)
		return
	}
	h.done = true
	h.mu.Unlock()

	query := r.URL.Query()

	if state := query.Get("state"); state != h.state {
		h.send(CallbackResult{Err: fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)})
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.send(CallbackResult{Err: fmt.Errorf("%w: %s (%s)",
			shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))})
		http.Error(w, "authorization denied", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.send(CallbackResult{Err: fmt.Errorf("%w: token exchange: %v", shared.ErrAuthFailed, err)})
		http.Error(w, "token exchange failed", http.StatusInternalServerError)
		return
	}

	h.send(CallbackResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>crate</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4rem;">
  <h1>Signed in</h1>
  <p>You can close this tab and return to the terminal.</p>
</body>
</html>
`)
}

// WaitForToken serves the redirect URI's host and path until the callback
// arrives or ctx expires, then shuts the listener down.
func WaitForToken(ctx context.Context, config *oauth2.Config, state string, logger *log.Logger) (*oauth2.Token, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	redirect, err := url.Parse(config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect URI: %v", shared.ErrInvalidConfig, err)
	}

	handler := NewCallbackHandler(config, state)

	mux := http.NewServeMux()
	mux.Handle(redirect.Path, handler)

	srv := &http.Server{Addr: redirect.Host, Handler: mux}
	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	logger.Infof("waiting for authorization callback on %s", config.RedirectURL)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case result := <-handler.Result():
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Token, nil
	case err := <-errs:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
