package storage

import "context"

// ChannelPlatform returns the platform configured for a channel, or
// DefaultPlatform when none was set.
func (s *Storage) ChannelPlatform(_ context.Context, guildID, channelID string) (string, error) {
	rec, err := s.view(guildID)
	if err != nil {
		return "", err
	}
	if p := rec.ChannelPlatforms[channelID]; p != "" {
		return p, nil
	}
	return DefaultPlatform, nil
}

func (s *Storage) SetChannelPlatform(_ context.Context, guildID, channelID, platform string) error {
	return s.update(guildID, func(rec *Record) error {
		rec.ChannelPlatforms[channelID] = platform
		return nil
	})
}
