package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrUnresolved = errors.New("display_name_unresolved")

// HTTPResolver looks up profiles on the identity collaborator. One retry on
// transport errors and 5xx; anything else is reported as unresolved and the
// caller falls back to placeholder text.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPResolver) DisplayName(ctx context.Context, userID string) (string, error) {
	if r.baseURL == "" || userID == "" {
		return "", ErrUnresolved
	}
	url := fmt.Sprintf("%s/v1/users/%s", r.baseURL, userID)
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := r.client.Do(req)
		if err != nil {
			if attempt == 0 && ctx.Err() == nil {
				time.Sleep(200 * time.Millisecond)
				continue
			}
			return "", ErrUnresolved
		}
		if resp.StatusCode >= 500 && attempt == 0 {
			resp.Body.Close()
			time.Sleep(200 * time.Millisecond)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return "", ErrUnresolved
		}
		var body struct {
			DisplayName string `json:"display_name"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil || body.DisplayName == "" {
			return "", ErrUnresolved
		}
		return body.DisplayName, nil
	}
	return "", ErrUnresolved
}
