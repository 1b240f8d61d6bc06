package discord

import (
	"context"
	"strconv"
	"strings"

	"github.com/keshon/genesis/internal/command"

	"github.com/bwmarrin/discordgo"
)

// onMessageCreate turns a prefixed or mention-addressed message into a
// dispatch.
func (sh *shard) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	botID := ""
	if s.State.User != nil {
		botID = s.State.User.ID
	}
	content, ok := stripInvocation(m.Content, sh.bot.cfg.Prefix, botID)
	if !ok {
		return
	}

	msg := &command.Message{
		ID:            m.ID,
		Content:       content,
		ChannelID:     m.ChannelID,
		GuildID:       m.GuildID,
		AuthorID:      m.Author.ID,
		AuthorName:    m.Author.Username,
		DirectMessage: m.GuildID == "",
	}
	msg.AuthorLevel = levelFor(m.Author.ID, sh.bot.cfg.OwnerID, sh.permissions(s, m))

	ctx := context.Background()
	status := sh.bot.dispatcher.Dispatch(ctx, msg)
	switch status {
	case command.StatusNotApplicable:
		return
	case command.StatusUnauthorized:
		if err := sh.bot.respond(ctx, msg, command.Reply{Embed: deniedEmbed(msg), Ephemeral: true}); err != nil {
			sh.bot.logger.Printf("[WARN] [shard %d] Failed to send denial: %v", sh.id, err)
		}
	}
	sh.bot.logger.Printf("[DEBUG] [shard %d] %s ran %q: %s", sh.id, msg.AuthorName, msg.Content, status)
}

// permissions are the author's permissions in the channel. Direct messages
// carry none.
func (sh *shard) permissions(s *discordgo.Session, m *discordgo.MessageCreate) int64 {
	if m.GuildID == "" {
		return 0
	}
	perms, err := s.State.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		perms, err = s.UserChannelPermissions(m.Author.ID, m.ChannelID)
		if err != nil {
			sh.bot.logger.Printf("[WARN] [shard %d] Failed to resolve permissions of %s: %v", sh.id, m.Author.ID, err)
			return 0
		}
	}
	return perms
}

// stripInvocation removes the command prefix or a leading mention of the
// bot. It reports false when the message addresses neither.
func stripInvocation(content, prefix, botID string) (string, bool) {
	content = strings.TrimSpace(content)

	if botID != "" {
		for _, mention := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
			if strings.HasPrefix(content, mention) {
				return strings.TrimSpace(strings.TrimPrefix(content, mention)), true
			}
		}
	}
	if prefix != "" && strings.HasPrefix(content, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(content, prefix)), true
	}
	return "", false
}

// elevatedPermissions grant LevelManager.
const elevatedPermissions = discordgo.PermissionAdministrator |
	discordgo.PermissionManageGuild |
	discordgo.PermissionManageRoles

func levelFor(authorID, ownerID string, perms int64) command.Level {
	switch {
	case ownerID != "" && authorID == ownerID:
		return command.LevelOwner
	case perms&elevatedPermissions != 0:
		return command.LevelManager
	default:
		return command.LevelMember
	}
}

// shardFor is the gateway sharding formula: (guild_id >> 22) % shard_count.
func shardFor(guildID string, count int) int {
	if count <= 1 || guildID == "" {
		return 0
	}
	id, err := strconv.ParseUint(guildID, 10, 64)
	if err != nil {
		return 0
	}
	return int((id >> 22) % uint64(count))
}

func deniedEmbed(msg *command.Message) *command.Embed {
	if msg.DirectMessage {
		return &command.Embed{
			Title:       "Not available here",
			Description: "This command can only be used in a server.",
		}
	}
	return &command.Embed{
		Title:       "Access denied",
		Description: "You need the Manage Server, Manage Roles or Administrator permission to use this command.",
	}
}
