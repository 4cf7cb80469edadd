package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/hitoshi/scrimbot/internal/messaging"
)

// threadArchiveMinutes は議論スレッドの自動アーカイブまでの時間（分）。
const threadArchiveMinutes = 1440

// Messenger はdiscordgoのRESTクライアントによるmessaging.Messengerの実装。
type Messenger struct {
	session *discordgo.Session
}

var _ messaging.Messenger = (*Messenger)(nil)

// NewMessenger はMessengerを生成する。
func NewMessenger(session *discordgo.Session) *Messenger {
	return &Messenger{session: session}
}

func (m *Messenger) Post(ctx context.Context, channelID string, msg messaging.Message) (string, error) {
	sent, err := m.session.ChannelMessageSendComplex(channelID, toMessageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("post to channel %s: %w", channelID, mapError(err))
	}
	return sent.ID, nil
}

func (m *Messenger) StartThread(ctx context.Context, channelID, messageID, title string) (string, error) {
	th, err := m.session.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                title,
		AutoArchiveDuration: threadArchiveMinutes,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("start thread on %s: %w", messageID, mapError(err))
	}
	return th.ID, nil
}

func (m *Messenger) Send(ctx context.Context, channelID string, msg messaging.Message) error {
	if _, err := m.session.ChannelMessageSendComplex(channelID, toMessageSend(msg), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send to %s: %w", channelID, mapError(err))
	}
	return nil
}

func (m *Messenger) ArchiveThread(ctx context.Context, threadID string) error {
	archived := true
	_, err := m.session.ChannelEditComplex(threadID, &discordgo.ChannelEdit{Archived: &archived}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("archive thread %s: %w", threadID, mapError(err))
	}
	return nil
}

func (m *Messenger) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := m.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete message %s: %w", messageID, mapError(err))
	}
	return nil
}

func (m *Messenger) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := m.session.ChannelDelete(threadID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete thread %s: %w", threadID, mapError(err))
	}
	return nil
}

// SendDirect はDMチャンネルを開いてからメッセージを送る。
func (m *Messenger) SendDirect(ctx context.Context, userID string, msg messaging.Message) error {
	ch, err := m.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm with %s: %w", userID, mapError(err))
	}
	if _, err := m.session.ChannelMessageSendComplex(ch.ID, toMessageSend(msg), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("dm %s: %w", userID, mapError(err))
	}
	return nil
}
