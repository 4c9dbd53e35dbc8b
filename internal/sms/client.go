// Package sms talks to the LucoSMS gateway that delivers outgoing messages.
package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lucosms-backend/internal/model"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://luco-sms-api.onrender.com"

	sendPath      = "/api/v1/send_sms"
	statusSuccess = "success"
)

var ErrSendFailed = errors.New("failed to send SMS")

type sendBody struct {
	Recipient []string `json:"recipient"`
	Message   string   `json:"message"`
}

// Client sends one message to a list of canonical recipients per call.
// Sends are never retried; a retry could deliver the message twice.
type Client struct {
	httpClient *resty.Client
	userID     string
	logger     *zap.Logger
}

func NewClient(baseURL, userID string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client, userID: userID, logger: logger}
}

func (c *Client) Send(ctx context.Context, recipients []string, message string) (*model.SendResult, error) {
	c.logger.Info("Calling SMS gateway",
		zap.Int("recipients", len(recipients)),
		zap.Int("message_length", len(message)),
	)

	var result model.SendResult
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("user_id", c.userID).
		SetBody(sendBody{Recipient: recipients, Message: message}).
		SetResult(&result).
		SetError(&result).
		Post(sendPath)
	if err != nil {
		c.logger.Error("SMS gateway call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if resp.IsError() || result.Status != statusSuccess {
		reason := result.Message
		if reason == "" {
			reason = fmt.Sprintf("gateway returned status %d", resp.StatusCode())
		}
		c.logger.Error("SMS gateway rejected message",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("status", result.Status),
			zap.String("msg", result.Message),
		)
		return nil, fmt.Errorf("%w: %s", ErrSendFailed, reason)
	}

	c.logger.Info("SMS sent",
		zap.Int("recipients_count", result.RecipientsCount),
		zap.Float64("total_cost", result.TotalCost),
	)
	return &result, nil
}
