// Package authclient resolves bearer tokens against the external auth
// service. Registration and token issuance live there; this service
// only revalidates on every call.
package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/niksmo/sweet-shop/internal/core/domain"
	"github.com/niksmo/sweet-shop/internal/core/port"
)

var _ port.Authenticator = (*Client)(nil)

const requestTimeout = 3 * time.Second

type Client struct {
	baseURL string
	httpCl  *http.Client
}

func New(baseURL string) Client {
	return Client{
		baseURL: baseURL,
		httpCl:  &http.Client{Timeout: requestTimeout},
	}
}

func (c Client) Authenticate(
	ctx context.Context, token string,
) (domain.Principal, error) {
	const op = "authclient.Client.Authenticate"

	if err := ctx.Err(); err != nil {
		return domain.Principal{}, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/v1/auth/me", nil)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpCl.Do(req)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return domain.Principal{}, fmt.Errorf(
			"%s: %w", op, domain.ErrUnauthenticated)
	}

	var body struct {
		UserID string `json:"user_id"`
		Admin  bool   `json:"admin"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return domain.Principal{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.Principal{UserID: body.UserID, Admin: body.Admin}, nil
}
