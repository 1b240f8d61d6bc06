package command

// Level is the authorization tier of a message author.
type Level int

const (
	LevelMember Level = iota
	// LevelManager is granted to members that can manage the server.
	LevelManager
	// LevelOwner is the bot owner.
	LevelOwner
)

// Elevated reports whether l may run commands that require auth.
func (l Level) Elevated() bool {
	return l >= LevelManager
}

func (l Level) String() string {
	switch l {
	case LevelOwner:
		return "owner"
	case LevelManager:
		return "manager"
	default:
		return "member"
	}
}

// ParseLevel maps a level name back to a Level. Unknown names are members.
func ParseLevel(s string) Level {
	switch s {
	case "owner":
		return LevelOwner
	case "manager":
		return LevelManager
	default:
		return LevelMember
	}
}
