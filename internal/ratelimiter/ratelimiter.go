package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	PrivateChatInterval = time.Second
	GroupChatInterval   = 3 * time.Second
	queueSize           = 256
)

var ErrStopped = errors.New("rate limiter stopped")

// API is the part of tgbotapi.BotAPI the limiter drives.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type job struct {
	ctx    context.Context
	msg    tgbotapi.Chattable
	result chan result
}

type result struct {
	message tgbotapi.Message
	err     error
}

// RateLimiter serializes outgoing messages and keeps a minimum interval
// between two messages to the same chat.
type RateLimiter struct {
	api             API
	privateInterval time.Duration
	groupInterval   time.Duration

	queue    chan job
	lastSent map[int64]time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	log *slog.Logger
}

func New(api API, log *slog.Logger) *RateLimiter {
	return NewWithIntervals(api, PrivateChatInterval, GroupChatInterval, log)
}

func NewWithIntervals(
	api API,
	privateInterval time.Duration,
	groupInterval time.Duration,
	log *slog.Logger,
) *RateLimiter {
	rl := &RateLimiter{
		api:             api,
		privateInterval: privateInterval,
		groupInterval:   groupInterval,
		queue:           make(chan job, queueSize),
		lastSent:        make(map[int64]time.Time),
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
		log:             log,
	}

	go rl.run()

	return rl
}

// Send queues a message and blocks until it was delivered, ctx was
// cancelled or the limiter was stopped.
func (rl *RateLimiter) Send(
	ctx context.Context,
	msg tgbotapi.Chattable,
) (tgbotapi.Message, error) {
	select {
	case <-rl.stop:
		return tgbotapi.Message{}, ErrStopped
	default:
	}

	j := job{ctx: ctx, msg: msg, result: make(chan result, 1)}

	select {
	case rl.queue <- j:
	case <-ctx.Done():
		return tgbotapi.Message{}, ctx.Err()
	case <-rl.stop:
		return tgbotapi.Message{}, ErrStopped
	}

	select {
	case res := <-j.result:
		return res.message, res.err
	case <-ctx.Done():
		return tgbotapi.Message{}, ctx.Err()
	case <-rl.done:
		select {
		case res := <-j.result:
			return res.message, res.err
		default:
			return tgbotapi.Message{}, ErrStopped
		}
	}
}

// Request bypasses the queue. It is meant for chat actions, deletions
// and callback answers, which do not count against the message pace.
func (rl *RateLimiter) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return rl.api.Request(c)
}

// Stop rejects queued messages and waits for the worker to exit.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
	<-rl.done
}

func (rl *RateLimiter) run() {
	defer close(rl.done)

	for {
		select {
		case j := <-rl.queue:
			rl.deliver(j)
		case <-rl.stop:
			rl.drain()
			return
		}
	}
}

func (rl *RateLimiter) drain() {
	for {
		select {
		case j := <-rl.queue:
			j.result <- result{err: ErrStopped}
		default:
			return
		}
	}
}

func (rl *RateLimiter) deliver(j job) {
	if err := j.ctx.Err(); err != nil {
		j.result <- result{err: err}
		return
	}

	chatID := chatIDOf(j.msg)

	if delay := rl.delay(chatID, time.Now()); delay > 0 {
		rl.log.DebugContext(j.ctx, "Rate limiting message",
			"chatID", chatID,
			"delay", delay,
			"chattableType", fmt.Sprintf("%T", j.msg),
			"queueLen", len(rl.queue))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-j.ctx.Done():
			timer.Stop()
			j.result <- result{err: j.ctx.Err()}
			return
		case <-rl.stop:
			timer.Stop()
			j.result <- result{err: ErrStopped}
			return
		}
	}

	message, err := rl.api.Send(j.msg)
	rl.lastSent[chatID] = time.Now()

	j.result <- result{message: message, err: err}
}

func (rl *RateLimiter) delay(chatID int64, now time.Time) time.Duration {
	last, ok := rl.lastSent[chatID]
	if !ok {
		return 0
	}

	interval := rl.privateInterval
	if chatID < 0 {
		interval = rl.groupInterval
	}

	return max(interval-now.Sub(last), 0)
}

func chatIDOf(msg tgbotapi.Chattable) int64 {
	switch m := msg.(type) {
	case tgbotapi.MessageConfig:
		return m.ChatID
	case tgbotapi.EditMessageTextConfig:
		return m.ChatID
	case tgbotapi.EditMessageReplyMarkupConfig:
		return m.ChatID
	case tgbotapi.DeleteMessageConfig:
		return m.ChatID
	case tgbotapi.ChatActionConfig:
		return m.ChatID
	default:
		return 0
	}
}
