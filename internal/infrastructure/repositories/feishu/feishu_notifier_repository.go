package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/mrhelper/internal/domain/repositories"
)

const (
	retryMax     = 3
	retryWaitMin = 500 * time.Millisecond
	retryWaitMax = 2 * time.Second
)

// FeishuNotifierRepository posts merge request notifications to a Feishu custom bot webhook.
type FeishuNotifierRepository struct {
	webhook string
	client  *retryablehttp.Client
}

var _ repositories.NotifierRepository = (*FeishuNotifierRepository)(nil)

// NewNotifierRepository creates a notifier posting to webhook.
func NewNotifierRepository(webhook string) repositories.NotifierRepository {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil
	return &FeishuNotifierRepository{webhook: webhook, client: client}
}

// message and its nested types follow the "post" rich text format of Feishu bots.
type message struct {
	MsgType string         `json:"msg_type"`
	Content messageContent `json:"content"`
}

type messageContent struct {
	Post map[string]post `json:"post"`
}

type post struct {
	Title   string      `json:"title"`
	Content [][]element `json:"content"`
}

type element struct {
	Tag    string `json:"tag"`
	Text   string `json:"text,omitempty"`
	Href   string `json:"href,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

type response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (n *FeishuNotifierRepository) Notify(ctx context.Context, msg repositories.MergeRequestMessage) error {
	body, err := json.Marshal(buildMessage(msg))
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.webhook, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to webhook: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read webhook response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, raw)
	}

	var result response
	if unmarshalErr := json.Unmarshal(raw, &result); unmarshalErr != nil {
		return fmt.Errorf("failed to decode webhook response: %w", unmarshalErr)
	}
	if result.Code != 0 {
		return fmt.Errorf("webhook rejected message: %d %s", result.Code, result.Msg)
	}

	logger.Infof("[feishu] Notified merge request %s", msg.URL)
	return nil
}

func buildMessage(msg repositories.MergeRequestMessage) message {
	content := [][]element{
		{{Tag: "text", Text: "Repository: " + msg.Repository}},
		{{Tag: "text", Text: "Author: " + msg.Author}},
		{{Tag: "text", Text: "Target branch: " + msg.TargetBranch}},
		{{Tag: "text", Text: "Title: " + msg.Title}},
		{{Tag: "a", Text: msg.URL, Href: msg.URL}},
	}
	if len(msg.Mentions) > 0 {
		mentions := make([]element, 0, len(msg.Mentions))
		for _, id := range msg.Mentions {
			mentions = append(mentions, element{Tag: "at", UserID: id})
		}
		content = append(content, mentions)
	}

	return message{
		MsgType: "post",
		Content: messageContent{
			Post: map[string]post{
				"en_us": {
					Title:   "New merge request",
					Content: content,
				},
			},
		},
	}
}
