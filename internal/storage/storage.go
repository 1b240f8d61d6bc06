// /internal/storage/storage.go
package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/genesis/datastore"
)

const (
	commandHistoryLimit = 20

	// DefaultPlatform is used for channels that never set one.
	DefaultPlatform = "pc"

	// directMessageKey holds settings of channels outside any guild.
	directMessageKey = "@dm"
)

var (
	ErrCommandExists   = errors.New("custom command already exists")
	ErrCommandNotFound = errors.New("custom command not found")
)

// Storage is the settings store: per guild records over a datastore.
type Storage struct {
	ds *datastore.DataStore
	mu sync.Mutex // guards read-modify-write of records
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Status    string    `json:"status"`
	Datetime  time.Time `json:"datetime"`
}

type CustomCommand struct {
	Call      string    `json:"call"`
	Response  string    `json:"response"`
	GuildID   string    `json:"guild_id"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type Record struct {
	ChannelPlatforms map[string]string      `json:"channel_platforms"`
	CustomCommands   []CustomCommand        `json:"custom_commands"`
	CommandHistory   []CommandHistoryRecord `json:"cmd_history"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// NewWithDataStore wraps an already opened datastore.
func NewWithDataStore(ds *datastore.DataStore) *Storage {
	return &Storage{ds: ds}
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func recordKey(guildID string) string {
	if guildID == "" {
		return directMessageKey
	}
	return guildID
}

// record loads the guild record. Callers hold s.mu.
func (s *Storage) record(guildID string) (*Record, error) {
	var rec Record
	if _, err := s.ds.Get(recordKey(guildID), &rec); err != nil {
		return nil, fmt.Errorf("load guild %s: %w", guildID, err)
	}
	if rec.ChannelPlatforms == nil {
		rec.ChannelPlatforms = map[string]string{}
	}
	return &rec, nil
}

func (s *Storage) update(guildID string, fn func(*Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.record(guildID)
	if err != nil {
		return err
	}
	if err := fn(rec); err != nil {
		return err
	}
	return s.ds.Put(recordKey(guildID), rec)
}

func (s *Storage) view(guildID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record(guildID)
}
