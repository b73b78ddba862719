package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Freeeeeet/moments_bot/internal/controller/keyboard"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Client обёртка над Telegram Bot API: доставка напоминаний, отправка
// коллажей и скачивание присланных фотографий
type Client struct {
	bot    *bot.Bot
	http   *http.Client
	logger *zap.Logger
}

func NewClient(b *bot.Bot, logger *zap.Logger) *Client {
	return &Client{
		bot:    b,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// SendReminder отправляет напоминание "пора сделать фото" с кнопкой открытия приложения
func (c *Client) SendReminder(ctx context.Context, chatID int64, text, buttonText, buttonURL string) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard.NewBuilder().Row(keyboard.URLButton(buttonText, buttonURL)).Build(),
	})

	if err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	return nil
}

// SendCollage отправляет готовый коллаж момента в чат
func (c *Client) SendCollage(ctx context.Context, chatID int64, caption string, png []byte) error {
	_, err := c.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: "moment.png",
			Data:     bytes.NewReader(png),
		},
		Caption: caption,
	})

	if err != nil {
		return fmt.Errorf("send collage: %w", err)
	}

	return nil
}

// DownloadFile скачивает файл по file_id через Bot API. Сетевые сбои
// повторяются с экспоненциальной паузой - фото участника терять жалко.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := c.bot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file info: %w", err)
	}

	link := c.bot.FileDownloadLink(file)

	var data []byte
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("telegram file server returned %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("telegram file server returned %d", resp.StatusCode)
		}

		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}

	c.logger.Debug("File downloaded",
		zap.String("file_id", fileID),
		zap.Int("size", len(data)),
	)

	return data, nil
}

// IsChatAdmin проверяет, является ли пользователь администратором или
// создателем чата
func (c *Client) IsChatAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	member, err := c.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return false, fmt.Errorf("get chat member: %w", err)
	}

	return member.Type == models.ChatMemberTypeOwner || member.Type == models.ChatMemberTypeAdministrator, nil
}

// GetChatMemberCount возвращает количество участников чата
func (c *Client) GetChatMemberCount(ctx context.Context, chatID int64) (int, error) {
	count, err := c.bot.GetChatMemberCount(ctx, &bot.GetChatMemberCountParams{
		ChatID: chatID,
	})
	if err != nil {
		return 0, fmt.Errorf("get chat member count: %w", err)
	}

	return count, nil
}
