package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/snezhkin/govorun/internal/config"
	"github.com/snezhkin/govorun/internal/control"
	"github.com/snezhkin/govorun/internal/filter"
	"github.com/snezhkin/govorun/internal/markov"
	"github.com/snezhkin/govorun/internal/store"
	"github.com/snezhkin/govorun/internal/telegram"
)

const helpText = `Доступные команды:
/gm - сгенерировать случайное сообщение
/story [число] - сгенерировать историю (по умолчанию 3 предложения)
/sst - отправить случайный стикер
/sg - отправить случайную гифку
/delmsg - удалить сообщение бота (в ответ на сообщение)
/stats - показать статистику базы данных
/help - показать это сообщение`

const adminHelpText = `Административные команды:
/exp - экспортировать все сообщения из базы данных
/adduser <id> - добавить пользователя в список разрешенных
/deluser <id> - удалить пользователя из списка разрешенных
/mr - обновить модель генерации
/help2 - показать это сообщение`

func main() {
	cfg, err := config.LoadBotConfig()
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}
	defer st.Close()

	endings := markov.DefaultForbiddenEndings()
	if cfg.ForbiddenEndingsFile != "" {
		endings, err = markov.LoadForbiddenEndings(cfg.ForbiddenEndingsFile)
		if err != nil {
			log.Fatalf("[bot] %v", err)
		}
	}

	coord := markov.NewCoordinator(st)
	gen := markov.NewGenerator(coord, endings)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := coord.ForceUpdate(ctx); err != nil {
		log.Printf("[bot] initial model build failed: %v", err)
	}

	// The HTTP timeout must outlast the long-poll timeout.
	client := telegram.NewClient(cfg.TelegramAPIBase, time.Duration(cfg.PollTimeout+10)*time.Second)

	b := &bot{
		cfg:       cfg,
		store:     st,
		coord:     coord,
		gen:       gen,
		client:    client,
		startedAt: time.Now().Unix(),
	}

	log.Printf("[bot] running db=%s group=%d admin=%d", cfg.DBPath, cfg.AllowedChatID, cfg.AdminUserID)
	b.run(ctx)
}

type bot struct {
	cfg       config.BotConfig
	store     *store.Store
	coord     *markov.Coordinator
	gen       *markov.Generator
	client    *telegram.Client
	startedAt int64
}

func (b *bot) run(ctx context.Context) {
	var offset int64
	if b.cfg.DropPending {
		bootstrapped, err := bootstrapOffset(b.client)
		if err != nil {
			log.Printf("[bot] bootstrap offset error: %v", err)
		} else {
			offset = bootstrapped
		}
	}

	circuit := control.NewCircuitBreaker(5, 30*time.Second)
	sleep := time.Duration(b.cfg.SleepSeconds) * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Printf("[bot] shutting down")
			return
		default:
		}

		if !circuit.Allow(time.Now()) {
			time.Sleep(sleep)
			continue
		}

		updates, err := b.client.GetUpdates(offset, b.cfg.PollTimeout)
		if err != nil {
			log.Printf("[bot] getUpdates error: %v", err)
			circuit.RecordFailure(time.Now())
			time.Sleep(sleep)
			continue
		}
		circuit.RecordSuccess()

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// bootstrapOffset fast-forwards past the backlog accumulated while the bot
// was down.
func bootstrapOffset(client *telegram.Client) (int64, error) {
	updates, err := client.GetUpdates(-1, 0)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		return 0, nil
	}
	return updates[len(updates)-1].UpdateID + 1, nil
}

func (b *bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	// The backlog before startup is not ours to answer.
	if msg.Date < b.startedAt {
		return
	}

	if strings.HasPrefix(msg.Text, "/") {
		b.handleCommand(ctx, msg)
		return
	}

	chatID := msg.Chat.ID
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}
	if !b.allowed(ctx, chatID, userID) {
		log.Printf("[bot] access denied chat_id=%d user_id=%d", chatID, userID)
		return
	}
	b.recordGroupMember(ctx, msg)

	switch {
	case msg.Sticker != nil:
		saved, err := b.store.SaveSticker(ctx, msg.Sticker.FileUniqueID, msg.Sticker.FileID, msg.Sticker.SetName, userID, chatID)
		if err != nil {
			log.Printf("[bot] save sticker: %v", err)
		} else if saved {
			log.Printf("[bot] sticker stored chat_id=%d", chatID)
		}
	case msg.Animation != nil:
		saved, err := b.store.SaveAnimation(ctx, msg.Animation.FileUniqueID, msg.Animation.FileID, msg.Animation.FileName, msg.Animation.MimeType, userID, chatID)
		if err != nil {
			log.Printf("[bot] save animation: %v", err)
		} else if saved {
			log.Printf("[bot] animation stored chat_id=%d", chatID)
		}
	case msg.Text != "":
		if !filter.Valid(msg.Text) {
			return
		}
		origin := store.Origin{ChatID: chatID}
		if msg.From != nil {
			origin.UserID = msg.From.ID
			origin.Username = msg.From.Username
			origin.FirstName = msg.From.FirstName
			origin.LastName = msg.From.LastName
		}
		if err := b.store.AppendMessage(ctx, msg.Text, origin); err != nil {
			log.Printf("[bot] append message: %v", err)
			return
		}
		b.maybeRandomEvent(ctx, chatID)
	}
}

// allowed implements the access rules: the admin everywhere, everyone in the
// configured group, and in private chats only users previously seen in the
// group. AllowedChatID 0 disables the chat gate.
func (b *bot) allowed(ctx context.Context, chatID, userID int64) bool {
	if userID != 0 && userID == b.cfg.AdminUserID {
		return true
	}
	if b.cfg.AllowedChatID == 0 || chatID == b.cfg.AllowedChatID {
		return true
	}
	if chatID > 0 && userID != 0 {
		ok, err := b.store.IsUserAllowed(ctx, userID)
		if err != nil {
			log.Printf("[bot] allowed-user lookup: %v", err)
			return false
		}
		return ok
	}
	return false
}

// recordGroupMember keeps the allowed-user list in sync with whoever speaks
// in the configured group.
func (b *bot) recordGroupMember(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || b.cfg.AllowedChatID == 0 || msg.Chat.ID != b.cfg.AllowedChatID {
		return
	}
	if err := b.store.AddAllowedUser(ctx, msg.From.ID, msg.From.Username, msg.From.FirstName, msg.From.LastName); err != nil {
		log.Printf("[bot] record group member: %v", err)
	}
}

func (b *bot) maybeRandomEvent(ctx context.Context, chatID int64) {
	if rand.Float64() >= b.cfg.EventChance {
		return
	}

	switch weightedPick([]float64{b.cfg.StickerWeight, b.cfg.AnimationWeight, b.cfg.TextWeight}) {
	case 0:
		fileID, err := b.store.RandomSticker(ctx)
		if err != nil {
			log.Printf("[bot] random sticker: %v", err)
			return
		}
		if fileID == "" {
			log.Printf("[bot] sticker event fired but no stickers stored")
			return
		}
		if err := b.client.SendSticker(chatID, fileID); err != nil {
			log.Printf("[bot] send sticker: %v", err)
		}
	case 1:
		fileID, err := b.store.RandomAnimation(ctx)
		if err != nil {
			log.Printf("[bot] random animation: %v", err)
			return
		}
		if fileID == "" {
			log.Printf("[bot] animation event fired but no animations stored")
			return
		}
		if err := b.client.SendAnimation(chatID, fileID); err != nil {
			log.Printf("[bot] send animation: %v", err)
		}
	default:
		if rand.Float64() < b.cfg.ShortMessageChance {
			b.reply(chatID, b.gen.Sentence(markov.DefaultMinWords, markov.DefaultMaxWords))
		} else {
			n := markov.DefaultMinSentences + rand.Intn(markov.DefaultMaxSentences-markov.DefaultMinSentences+1)
			b.reply(chatID, b.gen.Story(n, n, markov.DefaultMinWords, markov.DefaultMaxWords))
		}
	}
}

// weightedPick chooses an index proportionally to its weight. Non-positive
// weights are excluded; all-zero weights fall through to the last index.
func weightedPick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return len(weights) - 1
	}
	r := rand.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// parseCommand splits "/cmd@BotName arg1 arg2" into the bare command name
// and its arguments.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd, fields[1:]
}

func (b *bot) handleCommand(ctx context.Context, msg *telegram.Message) {
	cmd, args := parseCommand(msg.Text)
	chatID := msg.Chat.ID
	var userID int64
	if msg.From != nil {
		userID = msg.From.ID
	}

	if !b.allowed(ctx, chatID, userID) {
		log.Printf("[bot] access denied chat_id=%d user_id=%d command=%s", chatID, userID, cmd)
		return
	}
	isAdmin := userID != 0 && userID == b.cfg.AdminUserID
	isPrivate := chatID > 0

	switch cmd {
	case "start", "help":
		b.reply(chatID, helpText)

	case "gm":
		_ = b.client.SendChatAction(chatID, "typing")
		b.reply(chatID, b.gen.Sentence(markov.DefaultMinWords, markov.DefaultMaxWords))

	case "story":
		n := 3
		if len(args) > 0 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed < 1 || parsed > 10 {
				b.reply(chatID, "Укажите число предложений от 1 до 10, например: /story 3")
				return
			}
			n = parsed
		}
		_ = b.client.SendChatAction(chatID, "typing")
		b.reply(chatID, b.gen.Story(n, n, markov.DefaultMinWords, markov.DefaultMaxWords))

	case "mr":
		// Hidden admin command; no reply for anyone else, so its existence
		// stays undisclosed.
		if !isAdmin {
			log.Printf("[bot] ignored /mr from user_id=%d", userID)
			return
		}
		go b.coord.TriggerUpdate(ctx)
		b.reply(chatID, "Обновление модели запущено.")

	case "delmsg":
		if msg.ReplyToMessage == nil {
			b.reply(chatID, "Используйте эту команду в ответ на сообщение, которое нужно удалить.")
			return
		}
		if err := b.client.DeleteMessage(chatID, msg.ReplyToMessage.MessageID); err != nil {
			log.Printf("[bot] delete replied message: %v", err)
		}
		if err := b.client.DeleteMessage(chatID, msg.MessageID); err != nil {
			log.Printf("[bot] delete command message: %v", err)
		}

	case "sst":
		fileID, err := b.store.RandomSticker(ctx)
		if err != nil {
			log.Printf("[bot] random sticker: %v", err)
			return
		}
		if fileID == "" {
			b.reply(chatID, "В базе пока нет стикеров.")
			return
		}
		if err := b.client.SendSticker(chatID, fileID); err != nil {
			log.Printf("[bot] send sticker: %v", err)
		}

	case "sg":
		fileID, err := b.store.RandomAnimation(ctx)
		if err != nil {
			log.Printf("[bot] random animation: %v", err)
			return
		}
		if fileID == "" {
			b.reply(chatID, "В базе пока нет гифок.")
			return
		}
		if err := b.client.SendAnimation(chatID, fileID); err != nil {
			log.Printf("[bot] send animation: %v", err)
		}

	case "stats":
		st, err := b.store.Stats(ctx)
		if err != nil {
			log.Printf("[bot] stats: %v", err)
			return
		}
		b.reply(chatID, "Статистика базы данных:\n"+
			"Сообщений: "+strconv.Itoa(st.Messages)+"\n"+
			"Уникальных слов: "+strconv.Itoa(st.UniqueWords)+"\n"+
			"Стикеров: "+strconv.Itoa(st.Stickers)+"\n"+
			"Гифок: "+strconv.Itoa(st.Animations))

	case "help2":
		if !isAdmin || !isPrivate {
			return
		}
		b.reply(chatID, adminHelpText)

	case "exp":
		if !isAdmin || !isPrivate {
			return
		}
		texts, err := b.store.ReadAllTexts(ctx)
		if err != nil {
			log.Printf("[bot] export: %v", err)
			return
		}
		if len(texts) == 0 {
			b.reply(chatID, "База данных пуста.")
			return
		}
		data := []byte(strings.Join(texts, "\n") + "\n")
		if err := b.client.SendDocument(chatID, "messages.txt", data); err != nil {
			log.Printf("[bot] export: %v", err)
		}

	case "adduser":
		if !isAdmin || !isPrivate {
			return
		}
		id, ok := parseUserID(args)
		if !ok {
			b.reply(chatID, "Укажите ID пользователя, например: /adduser 123456789")
			return
		}
		if err := b.store.AddAllowedUser(ctx, id, "", "", ""); err != nil {
			log.Printf("[bot] add user: %v", err)
			return
		}
		b.reply(chatID, "Пользователь "+strconv.FormatInt(id, 10)+" добавлен в список разрешенных.")

	case "deluser":
		if !isAdmin || !isPrivate {
			return
		}
		id, ok := parseUserID(args)
		if !ok {
			b.reply(chatID, "Укажите ID пользователя, например: /deluser 123456789")
			return
		}
		removed, err := b.store.RemoveAllowedUser(ctx, id)
		if err != nil {
			log.Printf("[bot] remove user: %v", err)
			return
		}
		if removed {
			b.reply(chatID, "Пользователь "+strconv.FormatInt(id, 10)+" удален из списка разрешенных.")
		} else {
			b.reply(chatID, "Пользователь "+strconv.FormatInt(id, 10)+" не найден в списке разрешенных.")
		}
	}
}

func parseUserID(args []string) (int64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (b *bot) reply(chatID int64, text string) {
	if err := b.client.SendMessage(chatID, text); err != nil {
		log.Printf("[bot] send message chat_id=%d: %v", chatID, err)
	}
}
