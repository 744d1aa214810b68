package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MinhaKim02/protest-crawling-database/internal/assembly"
	"github.com/MinhaKim02/protest-crawling-database/internal/logger"
)

const (
	TelegramBaseURL = "https://api.telegram.org"
	telegramTimeout = 10 * time.Second
)

// TelegramNotifier posts the day's schedule to a Telegram chat through the Bot API
type TelegramNotifier struct {
	client   *resty.Client
	botToken string
	chatID   string
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramNotifier creates a notifier for one chat
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, errors.New("bot token is required")
	}
	if chatID == "" {
		return nil, errors.New("chat ID is required")
	}

	return &TelegramNotifier{
		client: resty.New().
			SetBaseURL(TelegramBaseURL).
			SetTimeout(telegramTimeout),
		botToken: botToken,
		chatID:   chatID,
	}, nil
}

// SetBaseURL points the notifier at another Bot API host
func (n *TelegramNotifier) SetBaseURL(url string) *TelegramNotifier {
	n.client.SetBaseURL(url)
	return n
}

// Notify sends the batch summary as one plain-text message
func (n *TelegramNotifier) Notify(ctx context.Context, batch *assembly.Batch) error {
	return n.SendMessage(ctx, Message(batch))
}

// SendMessage sends a text message to the configured chat
func (n *TelegramNotifier) SendMessage(ctx context.Context, text string) error {
	if text == "" {
		return errors.New("message text is required")
	}

	var result telegramResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"chat_id":                  n.chatID,
			"text":                     text,
			"disable_web_page_preview": true,
		}).
		SetResult(&result).
		SetError(&result).
		ForceContentType("application/json").
		Post("/bot" + n.botToken + "/sendMessage")
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}

	if !result.OK {
		if result.Description != "" {
			return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode(), result.Description)
		}
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode(), string(resp.Body()))
	}

	logger.Info("Posted schedule to Telegram", logger.Fields{"chat_id": n.chatID})
	return nil
}
