package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/genesis/internal/command"

	"github.com/bwmarrin/discordgo"
)

const EmbedColor = 0xb01e66

// responder implements command.Responder over the session that serves the
// message.
type responder struct {
	bot *Bot
}

func (r *responder) Respond(ctx context.Context, msg *command.Message, reply command.Reply) error {
	return r.bot.respond(ctx, msg, reply)
}

func (b *Bot) respond(ctx context.Context, msg *command.Message, reply command.Reply) error {
	s := b.session(msg.GuildID)

	send := renderReply(reply)
	if send.Content == "" && len(send.Embeds) == 0 {
		return nil
	}
	sent, err := s.ChannelMessageSendComplex(msg.ChannelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	if reply.DeleteOriginal && !msg.DirectMessage && msg.ID != "" {
		if err := s.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
			b.logger.Printf("[WARN] Failed to delete message %s: %v", msg.ID, err)
		}
	}
	if reply.Ephemeral && b.cfg.ReplyTTL > 0 {
		channelID, messageID := sent.ChannelID, sent.ID
		time.AfterFunc(b.cfg.ReplyTTL, func() {
			if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
				b.logger.Printf("[WARN] Failed to delete reply %s: %v", messageID, err)
			}
		})
	}
	return nil
}

func renderReply(reply command.Reply) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Content: reply.Content}
	if reply.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{renderEmbed(reply.Embed)}
	}
	return send
}

func renderEmbed(e *command.Embed) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       EmbedColor,
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}
