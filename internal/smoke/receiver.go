package smoke

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mpcw/walletd/internal/adapters/webhook"
)

// receiver is a local HTTP listener collecting the webhook deliveries the
// service sends during the run.
type receiver struct {
	server   *http.Server
	listener net.Listener
	secret   string

	mu     sync.Mutex
	events []event
	badSig int
}

// startReceiver binds a loopback listener on an ephemeral port. When secret
// is non-empty, each delivery's signature header is verified against it.
func startReceiver(secret string) (*receiver, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to bind webhook receiver: %w", err)
	}

	r := &receiver{listener: ln, secret: secret}
	mux := http.NewServeMux()
	mux.HandleFunc("/", r.handle)
	r.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() { _ = r.server.Serve(ln) }()
	return r, nil
}

// URL returns the receiver's callback URL.
func (r *receiver) URL() string {
	return "http://" + r.listener.Addr().String()
}

func (r *receiver) handle(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var e event
	if err := json.Unmarshal(body, &e); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	r.mu.Lock()
	if r.secret != "" {
		got := req.Header.Get(webhook.SignatureHeader)
		want := webhook.Sign([]byte(r.secret), body)
		if !hmac.Equal([]byte(got), []byte(want)) {
			r.badSig++
		}
	}
	r.events = append(r.events, e)
	r.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

// waitForEvent blocks until a delivery arrives or the wait elapses.
func (r *receiver) waitForEvent(ctx context.Context, wait time.Duration) (event, bool) {
	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return event{}, false
		default:
		}
		r.mu.Lock()
		if len(r.events) > 0 {
			e := r.events[0]
			r.mu.Unlock()
			return e, true
		}
		r.mu.Unlock()
		time.Sleep(50 * time.Millisecond)
	}
	return event{}, false
}

// badSignatures reports how many deliveries failed signature verification.
func (r *receiver) badSignatures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.badSig
}

// Close shuts the receiver down.
func (r *receiver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return r.server.Shutdown(ctx)
}
