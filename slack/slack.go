// Package slack shares the favorites shopping list through an incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"recipebrowser"
)

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 512

type Client struct {
	webhookURL string
	httpClient recipebrowser.HTTPClient
}

func NewClient(webhookURL string, httpClient recipebrowser.HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
	}
}

type message struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

func (c *Client) PostMessage(ctx context.Context, channel string, text string) error {
	if c.webhookURL == "" {
		return fmt.Errorf("slack webhook url is not configured")
	}

	payload, err := json.Marshal(message{Channel: channel, Text: text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if detail := strings.TrimSpace(string(body)); detail != "" {
			return fmt.Errorf("failed to post message: %s: %s", resp.Status, detail)
		}
		return fmt.Errorf("failed to post message: %s", resp.Status)
	}

	return nil
}

// PostShoppingList formats the aggregated ingredients and posts them to channel.
func PostShoppingList(ctx context.Context, client recipebrowser.SlackClient, channel string, favorites int, items []recipebrowser.AggregatedIngredient) error {
	if len(items) == 0 {
		return fmt.Errorf("shopping list is empty")
	}
	return client.PostMessage(ctx, channel, FormatShoppingList(favorites, items))
}

// FormatShoppingList renders one bullet per ingredient in mrkdwn. Ingredients used
// by more than one recipe carry the recipe count.
func FormatShoppingList(favorites int, items []recipebrowser.AggregatedIngredient) string {
	var b strings.Builder

	noun := "recipes"
	if favorites == 1 {
		noun = "recipe"
	}
	fmt.Fprintf(&b, "*Shopping list* for %d favorite %s\n", favorites, noun)

	for _, it := range items {
		b.WriteString("• ")
		b.WriteString(it.Name)
		if it.Measure != "" {
			fmt.Fprintf(&b, " (%s)", it.Measure)
		}
		if it.Count > 1 {
			fmt.Fprintf(&b, " ×%d", it.Count)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
