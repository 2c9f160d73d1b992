package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slotbook/models"
	"slotbook/utils"

	"firebase.google.com/go/v4/messaging"
	tgbot "github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// LogSender writes notifications to the log. It is the default transport
// for local runs.
type LogSender struct {
	Logger *zap.Logger
}

func (s LogSender) Send(_ context.Context, n models.Notification) error {
	logger := s.Logger
	if logger == nil {
		logger = utils.GetLogger()
	}
	logger.Info("Notification",
		zap.String("kind", string(n.Kind)),
		zap.String("recipient", n.Recipient),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	)
	return nil
}

// TelegramSender delivers through the Bot API sendMessage method. The
// recipient's external identity is their Telegram chat id.
type TelegramSender struct {
	Bot *tgbot.Bot
}

// NewTelegramSender builds a bot client against baseURL (the public Bot API
// when empty). It does not call getMe, so construction never touches the
// network.
func NewTelegramSender(token, baseURL string, opts ...tgbot.Option) (*TelegramSender, error) {
	if token == "" {
		return nil, errors.New("telegram: bot token is not configured")
	}
	options := []tgbot.Option{tgbot.WithSkipGetMe()}
	if baseURL != "" {
		options = append(options, tgbot.WithServerURL(strings.TrimRight(baseURL, "/")))
	}
	b, err := tgbot.New(token, append(options, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &TelegramSender{Bot: b}, nil
}

func (s *TelegramSender) Send(ctx context.Context, n models.Notification) error {
	if s.Bot == nil {
		return errors.New("telegram: bot is not configured")
	}
	_, err := s.Bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: n.Recipient,
		Text:   n.Title + "\n" + n.Body,
	})
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

// MessagingClient is the part of the Firebase messaging client used here.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender pushes to the topic a front end subscribes each actor to.
type FCMSender struct {
	Client MessagingClient
}

// ActorTopic is the FCM topic of one external identity.
func ActorTopic(externalID string) string {
	return "actor-" + externalID
}

func (s *FCMSender) Send(ctx context.Context, n models.Notification) error {
	msg := &messaging.Message{
		Topic: ActorTopic(n.Recipient),
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: map[string]string{
			"type":      string(n.Kind),
			"bookingId": fmt.Sprintf("%d", n.BookingID),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	if _, err := s.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm: failed to send message: %w", err)
	}
	return nil
}
