package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a running gateway instance. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

type Option func(*Client)

// WithAuthToken sets the operator session token sent with every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type urlBuilder struct {
	base       string
	path       string
	pathParams map[string]string
	query      url.Values
}

func (c *Client) url() urlBuilder {
	return urlBuilder{base: c.baseURL}
}

func (b urlBuilder) setPath(path string) urlBuilder {
	b.path = path
	return b
}

// setPathParam substitutes a {name} segment of a route pattern.
func (b urlBuilder) setPathParam(name, value string) urlBuilder {
	if b.pathParams == nil {
		b.pathParams = make(map[string]string)
	}
	b.pathParams[name] = value
	return b
}

func (b urlBuilder) addQueryParam(key string, value any) urlBuilder {
	if b.query == nil {
		b.query = make(url.Values)
	}
	b.query.Add(key, fmt.Sprintf("%v", value))
	return b
}

func (b urlBuilder) build() string {
	path := b.path
	for name, value := range b.pathParams {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	out := b.base + path
	if len(b.query) > 0 {
		out += "?" + b.query.Encode()
	}
	return out
}
