// Package series is a client for the remote series list API.
package series

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

const listPath = "/v1/public/series"

type ClientConfig struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	// Timeout of zero leaves the transport defaults in charge.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL    *url.URL
	publicKey  string
	privateKey string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("series api base url is required")
	}
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid series api base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid series api base url %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    u,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

// List fetches one page of series. Any transport, status, or decode failure is
// returned as an error and no partial response is produced.
func (c *Client) List(ctx context.Context, q ListQuery) (*ListResponse, error) {
	u := c.listURL(q)
	log := logger.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "series list request failed")
	}
	defer resp.Body.Close()

	log.Debug("series list response", logger.Data{
		"status_code": resp.StatusCode,
		"offset":      q.Offset,
		"search":      q.SearchText,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read series list response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		eb := apiErrorBody{}
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Message = eb.Message
			if apiErr.Message == "" {
				apiErr.Message = eb.Status
			}
		}
		return nil, apiErr
	}

	env := listEnvelope{}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "failed to decode series list response")
	}
	if env.Data == nil {
		return nil, errors.New("series list response is missing data")
	}

	return env.Data, nil
}

func (c *Client) listURL(q ListQuery) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + listPath

	params := url.Values{}
	params.Set("limit", strconv.Itoa(PageSize))
	if q.Offset >= 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.SearchText != "" {
		params.Set("titleStartsWith", q.SearchText)
	}
	if c.publicKey != "" {
		ts := strconv.FormatInt(c.now().UnixMilli(), 10)
		params.Set("ts", ts)
		params.Set("apikey", c.publicKey)
		params.Set("hash", signature(ts, c.privateKey, c.publicKey))
	}
	u.RawQuery = params.Encode()

	return u.String()
}

// signature is the md5 digest the API expects alongside the public key.
func signature(ts, privateKey, publicKey string) string {
	sum := md5.Sum([]byte(ts + privateKey + publicKey)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
