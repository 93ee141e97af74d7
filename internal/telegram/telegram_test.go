package telegram

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetUpdates_ParsesMessages(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getUpdates" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `{"ok":true,"result":[
			{"update_id":100,"message":{"message_id":1,"from":{"id":42,"username":"vasya"},"chat":{"id":-100,"type":"supergroup"},"date":1700000000,"text":"привет всем"}},
			{"update_id":101,"message":{"message_id":2,"from":{"id":42},"chat":{"id":-100},"date":1700000001,"sticker":{"file_id":"st-file","file_unique_id":"st-uniq","set_name":"pack"}}}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	updates, err := c.GetUpdates(-1, 30)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if !strings.Contains(gotQuery, "offset=-1") || !strings.Contains(gotQuery, "timeout=30") {
		t.Errorf("query missing offset/timeout: %q", gotQuery)
	}
	if len(updates) != 2 {
		t.Fatalf("got %d updates, want 2", len(updates))
	}
	if updates[0].UpdateID != 100 || updates[0].Message.Text != "привет всем" {
		t.Errorf("first update parsed wrong: %+v", updates[0])
	}
	if updates[0].Message.From.Username != "vasya" || updates[0].Message.Chat.ID != -100 {
		t.Errorf("first update sender/chat parsed wrong: %+v", updates[0].Message)
	}
	if updates[1].Message.Sticker == nil || updates[1].Message.Sticker.FileID != "st-file" {
		t.Errorf("second update sticker parsed wrong: %+v", updates[1].Message)
	}
}

func TestGetUpdates_NotOKReturnsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"ok":false,"error_code":401}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	updates, err := c.GetUpdates(0, 0)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if updates != nil {
		t.Fatalf("expected no updates, got %v", updates)
	}
}

func TestSendMessage_BodyAndTruncation(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("body is not valid JSON: %v", err)
		}
		io.WriteString(w, `{"ok":true,"result":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	if err := c.SendMessage(-100, `текст с "кавычками"`); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if body["chat_id"].(float64) != -100 || body["text"] != `текст с "кавычками"` {
		t.Fatalf("unexpected body: %v", body)
	}

	long := strings.Repeat("ы", 5000)
	if err := c.SendMessage(-100, long); err != nil {
		t.Fatalf("SendMessage long: %v", err)
	}
	sent := body["text"].(string)
	if got := len([]rune(sent)); got != 3900 {
		t.Fatalf("long message truncated to %d runes, want 3900", got)
	}
}

func TestSendStickerAndAnimation(t *testing.T) {
	paths := map[string]map[string]any{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		paths[r.URL.Path] = body
		io.WriteString(w, `{"ok":true,"result":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.SendSticker(-100, "st-file"); err != nil {
		t.Fatalf("SendSticker: %v", err)
	}
	if err := c.SendAnimation(-100, "gif-file"); err != nil {
		t.Fatalf("SendAnimation: %v", err)
	}
	if err := c.SendChatAction(-100, "typing"); err != nil {
		t.Fatalf("SendChatAction: %v", err)
	}

	if paths["/sendSticker"]["sticker"] != "st-file" {
		t.Errorf("sendSticker body: %v", paths["/sendSticker"])
	}
	if paths["/sendAnimation"]["animation"] != "gif-file" {
		t.Errorf("sendAnimation body: %v", paths["/sendAnimation"])
	}
	if paths["/sendChatAction"]["action"] != "typing" {
		t.Errorf("sendChatAction body: %v", paths["/sendChatAction"])
	}
}

func TestDeleteMessage_Body(t *testing.T) {
	var gotPath string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		io.WriteString(w, `{"ok":true,"result":true}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.DeleteMessage(-100, 42); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if gotPath != "/deleteMessage" {
		t.Errorf("path = %q, want /deleteMessage", gotPath)
	}
	if body["chat_id"].(float64) != -100 || body["message_id"].(float64) != 42 {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestSendDocument_Multipart(t *testing.T) {
	var gotName string
	var gotData []byte
	var gotChatID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		gotChatID = r.FormValue("chat_id")
		file, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		gotName = header.Filename
		gotData, _ = io.ReadAll(file)
		io.WriteString(w, `{"ok":true,"result":{}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.SendDocument(-100, "messages.txt", []byte("строка один\nстрока два\n")); err != nil {
		t.Fatalf("SendDocument: %v", err)
	}
	if gotChatID != "-100" {
		t.Errorf("chat_id = %q, want -100", gotChatID)
	}
	if gotName != "messages.txt" {
		t.Errorf("filename = %q, want messages.txt", gotName)
	}
	if string(gotData) != "строка один\nстрока два\n" {
		t.Errorf("document payload = %q", gotData)
	}
}
