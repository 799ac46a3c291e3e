package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// TextbeltSender sends SMS through the Textbelt HTTP API.
type TextbeltSender struct {
	client *resty.Client
	url    string
	key    string
}

func NewTextbeltSender(url, key string) *TextbeltSender {
	return &TextbeltSender{client: resty.New(), url: url, key: key}
}

type textbeltResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	TextID  string `json:"textId"`
}

func (t *TextbeltSender) Send(ctx context.Context, phone, message string) error {
	var result textbeltResult
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"phone":   phone,
			"message": message,
			"key":     t.key,
		}).
		SetResult(&result).
		SetError(&result).
		Post(t.url)
	if err != nil {
		return fmt.Errorf("textbelt request failed: %w", err)
	}
	if resp.IsError() || !result.Success {
		if result.Error == "" {
			result.Error = resp.Status()
		}
		return errors.New("textbelt: " + result.Error)
	}
	return nil
}
