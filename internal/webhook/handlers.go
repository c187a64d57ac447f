package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pagebot/internal/bot"
)

// handleVerification answers the platform's one-time subscription handshake:
// echo the challenge when the shared verify token matches, 403 otherwise.
func (s *Server) handleVerification(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == s.cfg.Messenger.VerifyToken {
		s.logger.Info("Webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}

	s.logger.Error("Webhook verification failed, verify tokens do not match")
	c.Status(http.StatusForbidden)
}

// handleEvents accepts one webhook delivery, acknowledges it immediately,
// and processes each messaging event in its own goroutine. Events are
// independent and share no mutable state beyond the user store.
func (s *Server) handleEvents(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.logger.Error("Failed to read webhook body", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	if !s.verifySignature(c.GetHeader("X-Hub-Signature"), body) {
		s.logger.Error("Webhook signature verification failed")
		c.Status(http.StatusForbidden)
		return
	}

	var envelope bot.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		s.logger.Error("Failed to decode webhook envelope", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	if envelope.Object != "page" {
		s.logger.Warn("Ignoring webhook for unknown object", "object", envelope.Object)
		c.Status(http.StatusOK)
		return
	}

	for _, entry := range envelope.Entry {
		for _, raw := range entry.Messaging {
			ev, err := bot.ParseEvent(raw)
			if err != nil {
				s.logger.Warn("Webhook received unknown messaging event", "error", err)
				continue
			}

			// The request is acknowledged before processing finishes, so
			// each event runs on a context detached from the request:
			// an in-flight plan always runs to completion.
			evCtx := context.WithoutCancel(c.Request.Context())
			go s.processor.HandleEvent(evCtx, ev)
		}
	}

	c.Status(http.StatusOK)
}

// verifySignature checks the X-Hub-Signature header (HMAC-SHA1 of the body
// keyed with the app secret). Deliveries without a signature are allowed but
// logged, matching the platform's older webhook behavior.
func (s *Server) verifySignature(header string, body []byte) bool {
	if header == "" {
		s.logger.Warn("Webhook delivery without signature header")
		return true
	}

	expected, ok := strings.CutPrefix(header, "sha1=")
	if !ok {
		return false
	}

	mac := hmac.New(sha1.New, []byte(s.cfg.Messenger.AppSecret))
	mac.Write(body)
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(expected))
}
