package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/joestump/joe-reader/internal/config"
	"github.com/joestump/joe-reader/internal/readerclient"
)

// TestFlash_ReachesTerminalClient runs the router behind a real listener and
// posts through the terminal reader's client, whose cookie jar only returns
// Secure cookies over https.
func TestFlash_ReachesTerminalClient(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	tests := []struct {
		name   string
		secure bool
		tls    bool
	}{
		{"default config over http", cfg.SecureCookies, false},
		{"secure cookies over https", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newReaderTestEnvWith(t, tt.secure)
			var ts *httptest.Server
			if tt.tls {
				ts = httptest.NewTLSServer(env.router)
			} else {
				ts = httptest.NewServer(env.router)
			}
			t.Cleanup(ts.Close)

			client, err := readerclient.New(ts.URL, ts.Client())
			if err != nil {
				t.Fatalf("readerclient.New: %v", err)
			}
			ctx := context.Background()

			page, err := client.Submit(ctx, http.MethodPost, "/add", url.Values{"feed_url": {""}}, client.Base())
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if !strings.Contains(string(page.Body), "Feed URL cannot be empty") {
				t.Error("flash message lost between the redirect and the list")
			}

			again, err := client.Load(ctx, client.Base())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if strings.Contains(string(again.Body), `class="flash`) {
				t.Error("flash shown twice")
			}
		})
	}
}
