package forward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ferrygo/wcfhttp/internal/metrics"
)

// deliveryTimeout bounds one outbound attempt. It also bounds how long the
// forwarder loop can stall on a slow endpoint before polling again.
const deliveryTimeout = 30 * time.Second

// Sink delivers one payload to a remote destination. Exactly one attempt is
// made per payload; a returned error means the payload is lost (at-most-once
// semantics). Errors never propagate past the forwarder loop.
type Sink interface {
	Deliver(ctx context.Context, p Payload) error
}

// HTTPSink POSTs payloads as JSON to a callback URL. Any response other
// than 200 counts as a delivery failure.
type HTTPSink struct {
	url    string
	client *http.Client
}

func NewHTTPSink(url string) *HTTPSink {
	return &HTTPSink{
		url:    url,
		client: &http.Client{Timeout: deliveryTimeout},
	}
}

func (s *HTTPSink) Deliver(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	rsp, err := s.client.Do(req)
	if err != nil {
		metrics.DeliveryFailures.WithLabelValues("transport").Inc()
		return fmt.Errorf("post %s: %w", s.url, err)
	}
	defer rsp.Body.Close()
	_, _ = io.Copy(io.Discard, rsp.Body)
	metrics.DeliveryDuration.Observe(time.Since(start).Seconds())

	if rsp.StatusCode != http.StatusOK {
		metrics.DeliveryFailures.WithLabelValues("status").Inc()
		return fmt.Errorf("callback returned status %d", rsp.StatusCode)
	}
	return nil
}
