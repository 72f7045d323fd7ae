// Package notify delivers pick shortlists over Telegram.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tennis-edge/internal/models"
)

// Min interval between any two Telegram messages to the same chat to
// avoid 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

// TelegramNotifier sends pick alerts to a Telegram chat
type TelegramNotifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	logger   *logrus.Logger
	mu       sync.Mutex
	lastSend time.Time

	queue     chan string
	queueDone chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewTelegramNotifier creates a new Telegram notifier. Returns an
// error if the bot token is rejected.
func NewTelegramNotifier(token string, chatID int64, logger *logrus.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("failed to verify bot token: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	n := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		logger:    logger,
		queue:     make(chan string, 100),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}

	n.wg.Add(1)
	go n.messageSender()

	logger.WithField("chat_id", chatID).Info("Telegram notifier initialized")

	return n, nil
}

// SendPicks queues a formatted alert for a shortlist of picks
// (non-blocking).
func (n *TelegramNotifier) SendPicks(ctx context.Context, picks []models.Pick, bankroll float64) error {
	if n == nil || n.bot == nil {
		return fmt.Errorf("telegram notifier not initialized")
	}
	if len(picks) == 0 {
		return nil
	}

	return n.enqueue(ctx, formatPicksAlert(picks, bankroll))
}

// SendTestAlert queues a test message (non-blocking).
func (n *TelegramNotifier) SendTestAlert(ctx context.Context, message string) error {
	if n == nil || n.bot == nil {
		return fmt.Errorf("telegram notifier not initialized")
	}
	text := fmt.Sprintf("*Test Alert*\n\n%s\n\n_Time: %s_",
		message, time.Now().UTC().Format("2006-01-02 15:04:05 UTC"))
	return n.enqueue(ctx, text)
}

func (n *TelegramNotifier) enqueue(ctx context.Context, text string) error {
	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- text:
		return nil
	default:
		n.logger.Warn("Telegram message queue is full, dropping message")
		return fmt.Errorf("message queue is full")
	}
}

// messageSender runs in background and sends queued messages with
// proper intervals
func (n *TelegramNotifier) messageSender() {
	defer n.wg.Done()

	for {
		select {
		case <-n.ctx.Done():
			// Drain remaining messages before exit
			for {
				select {
				case text := <-n.queue:
					n.send(text)
				default:
					close(n.queueDone)
					return
				}
			}
		case text := <-n.queue:
			n.send(text)
		}
	}
}

func (n *TelegramNotifier) send(text string) {
	n.mu.Lock()
	elapsed := time.Since(n.lastSend)
	if elapsed < telegramSendInterval {
		wait := telegramSendInterval - elapsed
		n.mu.Unlock()
		select {
		case <-n.ctx.Done():
			return
		case <-time.After(wait):
		}
		n.mu.Lock()
	}
	n.lastSend = time.Now()
	n.mu.Unlock()

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.WithError(err).Error("Failed to send telegram message")
		return
	}
	n.logger.WithField("queue_length", len(n.queue)).Debug("Telegram message sent")
}

// Stop stops the notifier and waits for queued messages to flush
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.cancel()
	<-n.queueDone
	n.wg.Wait()
}

func formatPicksAlert(picks []models.Pick, bankroll float64) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("*Value Picks* (%d)\n\n", len(picks)))
	for _, p := range picks {
		builder.WriteString(fmt.Sprintf("*%s* vs %s\n", escapeMarkdown(p.Selection()), escapeMarkdown(other(p))))
		builder.WriteString(fmt.Sprintf("Price: %.2f | Model: %.1f%% | Edge: %.1f%%\n",
			p.Price, p.ModelProb*100, p.Edge*100))
		builder.WriteString(fmt.Sprintf("Stake: %.2f\n", p.Stake))
		if !p.EventDate.IsZero() {
			builder.WriteString(fmt.Sprintf("Start: %s\n", p.EventDate.Format("2006-01-02 15:04 UTC")))
		}
		builder.WriteString("\n")
	}
	builder.WriteString(fmt.Sprintf("_Bankroll: %.2f_", bankroll))
	return builder.String()
}

func other(p models.Pick) string {
	if p.Side == models.PickSideB {
		return p.PlayerA
	}
	return p.PlayerB
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
