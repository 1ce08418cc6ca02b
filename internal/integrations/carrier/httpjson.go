package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const maxResponseBytes = 4 << 20

// Response хранит сырой ответ провайдера (код и тело).
type Response struct {
	StatusCode int
	Body       []byte
}

func (r Response) OK() bool {
	return r.StatusCode/100 == 2
}

// DoJSON sends one request with an optional JSON body and reads the whole
// response. Transport errors (timeouts included) come back as *ProviderError
// with StatusCode 0.
func DoJSON(ctx context.Context, httpc *http.Client, provider, method, url string, body any, headers map[string]string) (Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Response{}, errors.Wrap(err, "marshal request")
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return Response{}, errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "ParcelTrack/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return Response{}, &ProviderError{Provider: provider, Message: errors.Wrap(err, provider+" request").Error()}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, &ProviderError{Provider: provider, StatusCode: resp.StatusCode, Message: errors.Wrap(err, provider+" read body").Error()}
	}
	return Response{StatusCode: resp.StatusCode, Body: b}, nil
}

// ClampTimeout returns d limited to [min, max]; zero or negative gives def.
func ClampTimeout(d, def, min, max time.Duration) time.Duration {
	if d <= 0 {
		d = def
	}
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

// Snippet обрезает тело ответа для логов.
func Snippet(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
