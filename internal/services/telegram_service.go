package services

import (
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/example/rentify/internal/logger"
)

// Notifier pushes short operational messages to the administrators.
type Notifier interface {
	NotifyNewOrder(order OrderNotification) error
	NotifyOrderCanceled(orderID uint, userName string) error
	NotifyContactMessage(userName, subject string) error
}

// TelegramService sends admin notifications through a Telegram bot.
type TelegramService struct {
	bot         *tele.Bot
	adminChatID int64
	log         logger.ILogger
}

// NewTelegramService creates a TelegramService. Without a token or chat the
// service logs and drops messages.
func NewTelegramService(botToken string, adminChatID int64, log logger.ILogger) *TelegramService {
	s := &TelegramService{adminChatID: adminChatID, log: log}
	if botToken == "" {
		return s
	}

	bot, err := tele.NewBot(tele.Settings{Token: botToken, Offline: true})
	if err != nil {
		log.Error("telegram bot init failed", logger.Error(err))
		return s
	}
	s.bot = bot
	return s
}

// SendToAdmin sends an HTML message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.bot == nil || s.adminChatID == 0 {
		s.log.Debug("telegram not configured, notification dropped")
		return nil
	}

	if _, err := s.bot.Send(tele.ChatID(s.adminChatID), text, tele.ModeHTML); err != nil {
		s.log.Error("telegram send failed", logger.Error(err))
		return err
	}
	return nil
}

// OrderNotification contains order data for the admin chat.
type OrderNotification struct {
	OrderID        uint
	CarName        string
	UserName       string
	UserEmail      string
	RentalInterval int
	TotalPrice     string
	PickupDate     string
	DropoffDate    string
}

func (s *TelegramService) NotifyNewOrder(order OrderNotification) error {
	message := fmt.Sprintf(`<b>🚗 NEW ORDER #%d</b>
<b>Car:</b> %s
<b>Customer:</b> %s (%s)
<b>Period:</b> %s → %s (%d day(s))
<b>Total:</b> %s USD
━━━━━━━━━━━━━━━━━━`,
		order.OrderID,
		html.EscapeString(order.CarName),
		html.EscapeString(order.UserName),
		html.EscapeString(order.UserEmail),
		order.PickupDate,
		order.DropoffDate,
		order.RentalInterval,
		order.TotalPrice,
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

func (s *TelegramService) NotifyOrderCanceled(orderID uint, userName string) error {
	return s.SendToAdmin(fmt.Sprintf("<b>❌ ORDER #%d CANCELED</b>\n<b>By:</b> %s", orderID, html.EscapeString(userName)))
}

func (s *TelegramService) NotifyContactMessage(userName, subject string) error {
	return s.SendToAdmin(fmt.Sprintf("<b>✉️ NEW MESSAGE</b>\n<b>From:</b> %s\n<b>Subject:</b> %s", html.EscapeString(userName), html.EscapeString(subject)))
}
