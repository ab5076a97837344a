package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FlashCookie carries one-shot messages across a redirect.
const FlashCookie = "medrec_flash"

const (
	flashKey     = "flash_messages"
	flashReadKey = "flash_consumed"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// Flash queues a message for the next rendered page, whether that is the
// current response or the target of a redirect.
func Flash(c *gin.Context, level Level, text string) {
	msgs := append(pending(c), Message{Level: level, Text: text})
	c.Set(flashKey, msgs)

	payload, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	setFlashCookie(c, base64.RawURLEncoding.EncodeToString(payload), 0)
}

// Consume returns queued messages and clears the cookie.
func Consume(c *gin.Context) []Message {
	msgs := pending(c)
	_, consumed := c.Get(flashReadKey)
	c.Set(flashReadKey, true)
	if raw, err := c.Cookie(FlashCookie); err == nil && raw != "" && !consumed {
		if payload, err := base64.RawURLEncoding.DecodeString(raw); err == nil {
			var carried []Message
			if json.Unmarshal(payload, &carried) == nil {
				msgs = append(carried, msgs...)
			}
		}
		setFlashCookie(c, "", -1)
	} else if len(msgs) > 0 {
		setFlashCookie(c, "", -1)
	}
	c.Set(flashKey, []Message(nil))
	return msgs
}

func pending(c *gin.Context) []Message {
	if v, ok := c.Get(flashKey); ok {
		if msgs, ok := v.([]Message); ok {
			return msgs
		}
	}
	return nil
}

func setFlashCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, value, maxAge, "/", "", false, true)
}
