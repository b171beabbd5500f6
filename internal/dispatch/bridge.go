package dispatch

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const bridgeTimeout = 30 * time.Second

// httpDoer is satisfied by *http.Client.
type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Bridge forwards documents to another bridge's /print/raw endpoint, for
// tills that are not in Bluetooth range of the printer.
type Bridge struct {
	endpoint string
	apiKey   string
	client   httpDoer
}

// NewBridge targets baseURL. A nil client gets a default with a timeout
// long enough for a chunked BLE write on the far side.
func NewBridge(baseURL, apiKey string, client *http.Client) *Bridge {
	if client == nil {
		client = &http.Client{Timeout: bridgeTimeout}
	}
	return &Bridge{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/print/raw",
		apiKey:   apiKey,
		client:   client,
	}
}

func (b *Bridge) Dispatch(ctx context.Context, data []byte) error {
	body, err := json.Marshal(map[string]string{"base64": base64.StdEncoding.EncodeToString(data)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bridge request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bridge responded %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (b *Bridge) Close() error {
	if c, ok := b.client.(*http.Client); ok {
		c.CloseIdleConnections()
	}
	return nil
}
