package middleware

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"fleetbackend/clients/socketio"
	"fleetbackend/core"
)

type SlackAlertConfig struct {
	WebhookURL  string
	Environment string
	AppName     string
	LogsURL     string
}

type ErrorAlertMiddleware struct {
	config        SlackAlertConfig
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.Mutex
	alertCooldown time.Duration
	postWebhook   func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

func NewErrorAlertMiddleware(config SlackAlertConfig) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		config:        config,
		alertedErrors: make(map[string]time.Time),
		alertCooldown: 10 * time.Minute, // Don't alert same error more than once per 10min
		postWebhook:   slack.PostWebhookContext,
	}
}

// HTTPMiddleware recovers panics from HTTP handlers, alerts and answers 500
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				m.reportPanic(fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path), rec)
				writeErrorResponse(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// WrapMessageHandler alerts on errors and panics of a socket event handler
func (m *ErrorAlertMiddleware) WrapMessageHandler(handler socketio.MessageHandlerFunc) socketio.MessageHandlerFunc {
	return func(session *socketio.Session, event string, data any) (err error) {
		alertContext := fmt.Sprintf("Socket event %s from session %s", event, session.ID())
		defer func() {
			if rec := recover(); rec != nil {
				m.reportPanic(alertContext, rec)
				err = fmt.Errorf("panic in socket handler: %v", rec)
			}
		}()

		if err := handler(session, event, data); err != nil {
			if isClientError(err) {
				log.Printf("⚠️ %s rejected: %v", alertContext, err)
				return err
			}
			m.alertOnError(err, alertContext, "Socket event "+event)
			return err
		}
		return nil
	}
}

// WrapConnectionHook alerts on errors and panics of a session lifecycle hook
func (m *ErrorAlertMiddleware) WrapConnectionHook(hook socketio.ConnectionHookFunc) socketio.ConnectionHookFunc {
	return func(session *socketio.Session) (err error) {
		alertContext := fmt.Sprintf("Socket connection hook for session %s", session.ID())
		defer func() {
			if rec := recover(); rec != nil {
				m.reportPanic(alertContext, rec)
				err = fmt.Errorf("panic in connection hook: %v", rec)
			}
		}()

		if err := hook(session); err != nil {
			m.alertOnError(err, alertContext, "Socket connection hook")
			return err
		}
		return nil
	}
}

// isClientError reports errors caused by what a client sent; those are dropped, not paged
func isClientError(err error) bool {
	return core.IsValidationError(err) || core.IsForbiddenError(err) || core.IsUnauthenticatedError(err)
}

// alertOnError sends at most one alert per source and error within the cooldown.
// dedupeScope must not carry per-session values.
func (m *ErrorAlertMiddleware) alertOnError(err error, alertContext, dedupeScope string) {
	errorMsg := fmt.Sprintf("%s: %v", alertContext, err)
	hash := fmt.Sprintf("%x", md5.Sum([]byte(fmt.Sprintf("%s: %v", dedupeScope, err))))

	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	for key, lastAlert := range m.alertedErrors {
		if now.Sub(lastAlert) >= m.alertCooldown {
			delete(m.alertedErrors, key)
		}
	}

	if _, exists := m.alertedErrors[hash]; exists {
		return
	}

	go m.sendSlackAlert(errorMsg, alertContext)
	m.alertedErrors[hash] = now
}

func (m *ErrorAlertMiddleware) reportPanic(alertContext string, rec any) {
	errorMsg := fmt.Sprintf("%s: PANIC - %v", alertContext, rec)
	log.Printf("❌ %s", errorMsg)
	go m.sendSlackAlert(errorMsg, alertContext+" (PANIC)")
}

func (m *ErrorAlertMiddleware) sendSlackAlert(errorMsg, alertContext string) {
	if m.config.WebhookURL == "" {
		return
	}

	envPrefix := ""
	if m.config.Environment == "dev" {
		envPrefix = "[dev] "
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(
			slack.PlainTextType,
			fmt.Sprintf("🚨 %s[%s] Error Alert", envPrefix, m.config.AppName),
			true,
			false,
		)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Service:* %s", m.config.AppName), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Environment:* %s", m.config.Environment), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Context:* %s", alertContext), false, false),
		}, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Error:*\n```%s```", errorMsg), false, false),
			nil,
			nil,
		),
	}
	if m.config.LogsURL != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("🔗 <%s|View Logs>", m.config.LogsURL), false, false),
			nil,
			nil,
		))
	}

	msg := &slack.WebhookMessage{
		Text:   errorMsg,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.postWebhook(ctx, m.config.WebhookURL, msg); err != nil {
		log.Printf("❌ Failed to send Slack alert: %v", err)
	}
}
