package relay

import (
	"fmt"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"github.com/GMOnyx/Commandlessapp-sub004/internal/botconfig"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the hosted Commandless relay. It implements cache.Fetcher
// for config synchronization and carries the signed message-forward path.
type Client struct {
	baseURL       string
	apiKey        string
	signingSecret string
	pool          *HTTPPool
	timeout       time.Duration
}

func NewClient(baseURL, apiKey, signingSecret string, pool *HTTPPool, timeout time.Duration) *Client {
	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		signingSecret: signingSecret,
		pool:          pool,
		timeout:       timeout,
	}
}

// FetchConfig asks the relay for the bot's config, advertising the locally
// held version. The relay answers either {"upToDate":true} or a full
// BotConfig body. Any non-2xx status, transport error, or undecodable body
// is returned as an error.
func (c *Client) FetchConfig(botID string, version int64) (*botconfig.BotConfig, bool, error) {
	uri := fmt.Sprintf("%s/v1/relay/config?botId=%s&version=%d",
		c.baseURL, url.QueryEscape(botID), version)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("x-api-key", c.apiKey)

	if err := c.pool.GetClient().DoTimeout(req, resp, c.timeout); err != nil {
		return nil, false, fmt.Errorf("relay config request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, false, fmt.Errorf("relay config request returned status %d", status)
	}

	body := resp.Body()

	var probe struct {
		UpToDate bool `json:"upToDate"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, false, fmt.Errorf("malformed relay config response: %w", err)
	}
	if probe.UpToDate {
		return nil, true, nil
	}

	cfg := &botconfig.BotConfig{}
	if err := json.Unmarshal(body, cfg); err != nil {
		return nil, false, fmt.Errorf("malformed relay config response: %w", err)
	}
	return cfg, false, nil
}
