package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/kiriman-ayam/internal/config"
)

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
	return res
}

func TestRateLimitRejectsSecondRequestInBurst(t *testing.T) {
	handler := newTestDeps().handler(config.Config{
		APIRateLimitRPS:   1,
		APIRateLimitBurst: 1,
	})

	if res := serve(handler, "/api/master-kiriman"); res.Code != http.StatusOK {
		t.Fatalf("first request: status %d", res.Code)
	}
	res := serve(handler, "/api/master-kiriman")
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d, want 429", res.Code)
	}
	if got := res.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("Retry-After = %q", got)
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	handler := newTestDeps().handler(config.Config{})
	for i := 0; i < 5; i++ {
		if res := serve(handler, "/api/master-kiriman"); res.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, res.Code)
		}
	}
}

func TestBackpressureShedsWhileSlotIsHeld(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	first := make(chan int, 1)

	gate := backpressureMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-release
		w.WriteHeader(http.StatusNoContent)
	}), 1, 20*time.Millisecond)

	go func() { first <- serve(gate, "/api/riwayat").Code }()
	<-entered

	shed := serve(gate, "/api/riwayat")
	if shed.Code != http.StatusServiceUnavailable {
		t.Fatalf("saturated gate: status %d, want 503", shed.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(shed.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode overload body: %v", err)
	}
	if body.Error == "" {
		t.Fatalf("overload body has no error message")
	}

	close(release)
	select {
	case code := <-first:
		if code != http.StatusNoContent {
			t.Fatalf("held request: status %d", code)
		}
	case <-time.After(time.Second):
		t.Fatalf("held request never completed")
	}
}
