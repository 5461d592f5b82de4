package relay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// ForwardedMessage is the event payload posted to the relay once a message
// clears local admission. The relay side owns intent decisioning.
type ForwardedMessage struct {
	BotID       string   `json:"botId"`
	MessageID   string   `json:"messageId"`
	ChannelID   string   `json:"channelId"`
	AuthorID    string   `json:"authorId"`
	GuildID     string   `json:"guildId,omitempty"`
	MemberRoles []string `json:"memberRoles,omitempty"`
	Content     string   `json:"content"`
}

// ForwardMessage posts an admitted event to the relay, signed with the bot's
// shared secret. Failures are the caller's to log; nothing here retries.
func (c *Client) ForwardMessage(msg *ForwardedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode forwarded message: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/v1/relay/message")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("x-request-id", uuid.NewString())
	req.Header.Set("x-signature", c.sign(body))
	req.SetBody(body)

	if err := c.pool.GetClient().DoTimeout(req, resp, c.timeout); err != nil {
		return fmt.Errorf("relay message request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return fmt.Errorf("relay message request returned status %d", status)
	}
	return nil
}

func (c *Client) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.signingSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
