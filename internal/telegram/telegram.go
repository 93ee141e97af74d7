// Package telegram is a minimal Telegram Bot API client covering the calls
// the bot actually makes.
package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is a minimal Telegram Bot API client.
type Client struct {
	apiBase    string
	httpClient *http.Client
}

// NewClient creates a Telegram client for the given bot API base URL
// (e.g. "https://api.telegram.org/bot<token>").
func NewClient(apiBase string, requestTimeout time.Duration) *Client {
	return &Client{
		apiBase: apiBase,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Response is the generic Telegram API response wrapper.
type Response struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

// Update is one long-poll update.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message carries the parts of a Telegram message the bot cares about.
type Message struct {
	MessageID      int64      `json:"message_id"`
	From           *User      `json:"from,omitempty"`
	Chat           Chat       `json:"chat"`
	Date           int64      `json:"date"`
	Text           string     `json:"text,omitempty"`
	Sticker        *Sticker   `json:"sticker,omitempty"`
	Animation      *Animation `json:"animation,omitempty"`
	ReplyToMessage *Message   `json:"reply_to_message,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type,omitempty"`
}

type Sticker struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	SetName      string `json:"set_name,omitempty"`
}

type Animation struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileName     string `json:"file_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
}

// GetUpdates calls the getUpdates API. offset -1 asks Telegram for only the
// most recent pending update, which is how the backlog is skipped on startup.
func (c *Client) GetUpdates(offset int64, timeout int) ([]Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeout))

	resp, err := c.httpClient.Get(c.apiBase + "/getUpdates?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read getUpdates response: %w", err)
	}

	var tgResp Response
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates response: %w", err)
	}
	if !tgResp.OK {
		return nil, nil
	}

	var updates []Update
	if err := json.Unmarshal(tgResp.Result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates result: %w", err)
	}
	return updates, nil
}

// SendMessage sends a text message to the given chat.
func (c *Client) SendMessage(chatID int64, text string) error {
	limited := truncate(text, 3900)
	payload := fmt.Sprintf(`{"chat_id":%d,"text":%s}`, chatID, jsonString(limited))
	return c.post("/sendMessage", payload)
}

// SendSticker replays a previously stored sticker by file_id.
func (c *Client) SendSticker(chatID int64, fileID string) error {
	payload := fmt.Sprintf(`{"chat_id":%d,"sticker":%s}`, chatID, jsonString(fileID))
	return c.post("/sendSticker", payload)
}

// SendAnimation replays a previously stored GIF animation by file_id.
func (c *Client) SendAnimation(chatID int64, fileID string) error {
	payload := fmt.Sprintf(`{"chat_id":%d,"animation":%s}`, chatID, jsonString(fileID))
	return c.post("/sendAnimation", payload)
}

// DeleteMessage removes a message the bot is permitted to delete.
func (c *Client) DeleteMessage(chatID, messageID int64) error {
	payload := fmt.Sprintf(`{"chat_id":%d,"message_id":%d}`, chatID, messageID)
	return c.post("/deleteMessage", payload)
}

// SendChatAction shows a status like "typing" in the chat.
func (c *Client) SendChatAction(chatID int64, action string) error {
	payload := fmt.Sprintf(`{"chat_id":%d,"action":%s}`, chatID, jsonString(action))
	return c.post("/sendChatAction", payload)
}

// SendDocument uploads a file as a document attachment.
func (c *Client) SendDocument(chatID int64, filename string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("telegram sendDocument form: %w", err)
	}
	part, err := w.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("telegram sendDocument form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("telegram sendDocument form: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("telegram sendDocument form: %w", err)
	}

	resp, err := c.httpClient.Post(c.apiBase+"/sendDocument", w.FormDataContentType(), &buf)
	if err != nil {
		return fmt.Errorf("telegram sendDocument request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.ReadAll(resp.Body)
	return nil
}

func (c *Client) post(method, payload string) error {
	resp, err := c.httpClient.Post(c.apiBase+method, "application/json", bytes.NewReader([]byte(payload)))
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()
	_, _ = io.ReadAll(resp.Body) // drain
	return nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
