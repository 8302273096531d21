// Package canvas is the Canvas LMS REST client used to poll course enrollments.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bbanting/canvasgradecheck/pkg/httputil"
	"github.com/bbanting/canvasgradecheck/pkg/logger"
)

// Client handles communication with the Canvas REST API
// ⭐ SSOT: Canvas API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	perPage    int
	maxPages   int
}

// NewClient creates a Canvas API client authenticated with an access token
func NewClient(httpClient *httputil.Client, baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient.WithHeader("Authorization", "Bearer "+apiKey),
		logger:     log.WithField("module", "canvas"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		perPage:    100,
		maxPages:   500,
	}
}

// getJSON performs a GET and decodes a JSON body into dest.
// Returns the next-page URL from the Link header, if any.
func (c *Client) getJSON(ctx context.Context, fullURL string, dest interface{}) (string, error) {
	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", newStatusError(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return nextLink(resp.Header.Get("Link")), nil
}

// nextLink extracts the rel="next" URL from a Canvas pagination Link header.
//
//	<https://x/api/v1/courses/1/enrollments?page=2>; rel="next", <...>; rel="last"
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}

		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}

		for _, attr := range segments[1:] {
			attr = strings.ReplaceAll(strings.TrimSpace(attr), " ", "")
			if attr == `rel="next"` || attr == "rel=next" {
				return target[1 : len(target)-1]
			}
		}
	}
	return ""
}
