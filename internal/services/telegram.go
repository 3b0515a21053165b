package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DevN0mad/HRDashboard/internal/storage"
)

// TelegramOpts параметры необходимые для инициализации сервиса TelegramBotService.
// Пустой токен означает, что бот и рассылка выключены.
type TelegramOpts struct {
	Token   string `mapstructure:"token" yaml:"token"`
	Message string `mapstructure:"message" yaml:"message"`
}

// TelegramBotService сервис предназначенный для взаимодействия с telegram:
// подписка чатов командами /start и /stop, рассылка файлов отчета.
type TelegramBotService struct {
	opts   TelegramOpts
	logger *slog.Logger
	bot    *tgbotapi.BotAPI
	chats  *storage.ChatStorage
}

// NewTelegramBot создает экземпляр сервиса для работы с telegram ботом.
func NewTelegramBot(opts TelegramOpts, chats *storage.ChatStorage, logger *slog.Logger) (*TelegramBotService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	if chats == nil {
		return nil, fmt.Errorf("chat storage is required")
	}

	bot, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		logger.Error("Failed to create Telegram bot", "error", err)
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	logger.Info("Telegram bot created successfully",
		"bot_user", bot.Self.UserName,
	)
	return &TelegramBotService{
		opts:   opts,
		logger: logger,
		bot:    bot,
		chats:  chats,
	}, nil
}

// Start запускает цикл обработки команд подписки.
func (s *TelegramBotService) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := s.bot.GetUpdatesChan(u)

	s.logger.Info("Telegram update loop started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Telegram update loop stopped")
			s.bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				s.logger.Warn("Telegram update channel closed")
				return
			}
			s.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate обрабатывает одно обновление: команды подписки
// и миграцию чата в супергруппу.
func (s *TelegramBotService) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	if msg.MigrateToChatID != 0 {
		if err := s.chats.UpdateChatID(ctx, msg.Chat.ID, msg.MigrateToChatID); err != nil {
			s.logger.Error("Failed to migrate chat subscription",
				"old_chat_id", msg.Chat.ID,
				"new_chat_id", msg.MigrateToChatID,
				"error", err)
		}
		return
	}

	switch msg.Command() {
	case "start":
		if err := s.chats.SaveChat(ctx, msg.Chat.ID, msg.Chat.Title); err != nil {
			s.logger.Error("Failed to subscribe chat", "chat_id", msg.Chat.ID, "error", err)
			return
		}
		s.reply(msg.Chat.ID, "Чат подписан на ежедневный HR-отчет")
	case "stop":
		if err := s.chats.RemoveChat(ctx, msg.Chat.ID); err != nil {
			s.logger.Error("Failed to unsubscribe chat", "chat_id", msg.Chat.ID, "error", err)
			return
		}
		s.reply(msg.Chat.ID, "Чат отписан от рассылки")
	}
}

func (s *TelegramBotService) reply(chatID int64, text string) {
	if _, err := s.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		s.logger.Error("Failed to send reply", "chat_id", chatID, "error", err)
	}
}

// SendFile отправляет файл по переданному пути в telegram чат.
func (s *TelegramBotService) SendFile(ctx context.Context, chatID int64, path, caption string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			s.logger.Error("File not found", "path", path, "error", err)
			return fmt.Errorf("file not found at %q: %w", path, err)
		}
		s.logger.Error("Failed to access file", "path", path, "error", err)
		return fmt.Errorf("access file at %q: %w", path, err)
	}

	msg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	if caption != "" {
		msg.Caption = caption
	} else {
		msg.Caption = s.opts.Message
	}

	if _, err := s.bot.Send(msg); err != nil {
		s.logger.Error("Failed to send file",
			"path", path,
			"chat_id", chatID,
			"error", err)
		return fmt.Errorf("send file: %w", err)
	}

	s.logger.Info("File sent successfully",
		"path", path,
		"chat_id", chatID)
	return nil
}

// Broadcast отправляет файл во все подписанные чаты.
// Ошибка отправки в один чат не прерывает рассылку в остальные.
func (s *TelegramBotService) Broadcast(ctx context.Context, path, caption string) error {
	ids, err := s.chats.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}

	if len(ids) == 0 {
		s.logger.Info("No subscribed chats, nothing to broadcast")
		return nil
	}

	var failed int
	for _, chatID := range ids {
		if err := s.SendFile(ctx, chatID, path, caption); err != nil {
			failed++
		}
	}

	s.logger.Info("Broadcast finished", "chats", len(ids), "failed", failed)

	if failed == len(ids) {
		return fmt.Errorf("broadcast failed for all %d chats", failed)
	}
	return nil
}
