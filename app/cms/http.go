package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"storyline/app/config"
	"storyline/app/metrics"

	"github.com/pkg/errors"
)

// HTTPClient talks to the hosted CMS HTTP API.
type HTTPClient struct {
	projectID  string
	dataset    string
	apiVersion string
	token      string
	useCDN     bool
	apiHost    string
	http       *http.Client
}

// NewHTTPClient builds a client from cfg. A nil httpClient uses http.DefaultClient.
func NewHTTPClient(cfg *config.Config, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		projectID:  cfg.ProjectID,
		dataset:    cfg.Dataset,
		apiVersion: strings.TrimPrefix(cfg.APIVersion, "v"),
		token:      cfg.Token,
		useCDN:     cfg.UseCDN,
		apiHost:    strings.TrimSuffix(cfg.APIHost, "/"),
		http:       httpClient,
	}
}

// baseURL picks the CDN host for cacheable reads and the API host otherwise.
func (c *HTTPClient) baseURL(read bool) string {
	if c.apiHost != "" {
		return c.apiHost
	}
	host := "api"
	if read && c.useCDN {
		host = "apicdn"
	}
	return fmt.Sprintf("https://%s.%s.sanity.io", c.projectID, host)
}

func (c *HTTPClient) endpoint(read bool, action string) string {
	return fmt.Sprintf("%s/v%s/data/%s/%s", c.baseURL(read), c.apiVersion, action, url.PathEscape(c.dataset))
}

// Fetch runs a query. Parameters are sent JSON-encoded as $name query values.
func (c *HTTPClient) Fetch(ctx context.Context, query string, params map[string]any, out any) error {
	values := url.Values{}
	values.Set("query", query)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return errors.Wrapf(err, "cms: encoding parameter %q", name)
		}
		values.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(true, "query")+"?"+values.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "cms: building query request")
	}

	var body struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.do(req, &body); err != nil {
		return err
	}
	if len(body.Result) == 0 || bytes.Equal(body.Result, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(body.Result, out); err != nil {
		return errors.Wrap(err, "cms: decoding query result")
	}
	return nil
}

// Create submits a single create mutation.
func (c *HTTPClient) Create(ctx context.Context, doc any) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"mutations": []map[string]any{{"create": doc}},
	})
	if err != nil {
		return "", errors.Wrap(err, "cms: encoding mutation")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(false, "mutate")+"?returnIds=true", bytes.NewReader(payload))
	if err != nil {
		return "", errors.Wrap(err, "cms: building mutation request")
	}
	req.Header.Set("Content-Type", "application/json")

	var body struct {
		TransactionID string `json:"transactionId"`
		Results       []struct {
			ID        string `json:"id"`
			Operation string `json:"operation"`
		} `json:"results"`
	}
	if err := c.do(req, &body); err != nil {
		return "", err
	}
	if len(body.Results) == 0 {
		return "", errors.New("cms: mutation returned no results")
	}
	return body.Results[0].ID, nil
}

func (c *HTTPClient) do(req *http.Request, out any) (err error) {
	operation := "query"
	if req.Method == http.MethodPost {
		operation = "mutate"
	}
	defer func() {
		metrics.CMSRequests.WithLabelValues(operation, metrics.Outcome(err)).Inc()
	}()

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "cms: %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "cms: reading response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "cms: decoding response")
	}
	return nil
}

func newAPIError(status int, data []byte) *APIError {
	var body struct {
		Message string `json:"message"`
		Error   struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	msg := http.StatusText(status)
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Error.Description != "":
			msg = body.Error.Description
		case body.Message != "":
			msg = body.Message
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}
