package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/hitoshi/scrimbot/internal/middleware"
)

// ErrDisconnected はゲートウェイ接続が確立していないことを表す。
var ErrDisconnected = errors.New("discord: gateway not ready")

// eventTimeout は1件のイベント処理に許す最大時間。
// インタラクションのトークンは15分で失効する。
const eventTimeout = 10 * time.Minute

// NewSession はボットトークンでdiscordgoのセッションを生成する。
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}

// Bot はゲートウェイからのイベントをHandlerへ渡す。
type Bot struct {
	session *discordgo.Session
	handler middleware.Handler
	admins  map[string]bool
	logger  *slog.Logger
}

// NewBot はBotを生成する。adminsはサーバー権限に関係なく管理者として扱うユーザーID。
func NewBot(session *discordgo.Session, handler middleware.Handler, admins map[string]bool, logger *slog.Logger) *Bot {
	return &Bot{session: session, handler: handler, admins: admins, logger: logger}
}

// Run はゲートウェイに接続し、ctxがキャンセルされるまでイベントを処理する。
func (b *Bot) Run(ctx context.Context) error {
	remove := b.session.AddHandler(func(s *discordgo.Session, ev *discordgo.InteractionCreate) {
		b.dispatch(ctx, ev.Interaction)
	})
	defer remove()

	b.session.AddHandlerOnce(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("gateway ready",
			slog.String("user", r.User.Username),
			slog.Int("guilds", len(r.Guilds)),
		)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	<-ctx.Done()

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close gateway: %w", err)
	}
	return nil
}

// dispatch は1件のイベントを処理する。エラーはミドルウェアが記録済みのため捨てる。
func (b *Bot) dispatch(parent context.Context, i *discordgo.Interaction) {
	in := translate(i, b.admins)
	if in == nil {
		b.logger.Debug("ignoring unsupported interaction", slog.Int("type", int(i.Type)))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), eventTimeout)
	defer cancel()

	_ = b.handler.Handle(ctx, in, &responder{session: b.session, i: i})
}

// PingContext はゲートウェイの接続状態を返す。/healthから呼ばれる。
func (b *Bot) PingContext(ctx context.Context) error {
	if !b.session.DataReady {
		return ErrDisconnected
	}
	return ctx.Err()
}
