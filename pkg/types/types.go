package types

// Role identifies what a user account is allowed to do.
type Role uint8

const (
	RoleStudent Role = 1
	RoleTeacher Role = 2
	RoleAdmin   Role = 3
)

// Valid reports whether the role is one of the defined roles.
func (r Role) Valid() bool {
	return r >= RoleStudent && r <= RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleTeacher:
		return "teacher"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Level is a user's proficiency level. Lessons are catalogued per level.
type Level uint8

const (
	LevelBeginner     Level = 1
	LevelIntermediate Level = 2
	LevelAdvanced     Level = 3
)

// Valid reports whether the level is one of the defined levels.
func (l Level) Valid() bool {
	return l >= LevelBeginner && l <= LevelAdvanced
}

func (l Level) String() string {
	switch l {
	case LevelBeginner:
		return "beginner"
	case LevelIntermediate:
		return "intermediate"
	case LevelAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// UserRecord is one registered account. Records are created at
// registration or bootstrap and live for the process lifetime; there is
// no deletion path. Score only ever grows.
type UserRecord struct {
	Username     string
	PasswordHash string
	Role         Role
	Level        Level
	Score        int
}

// LessonEntry is one entry of the static lesson catalogue.
type LessonEntry struct {
	ID    string
	Title string
}

// FeedbackEntry is a teacher's note on a student's exercise, append-only
// per recipient.
type FeedbackEntry struct {
	Recipient  string
	ExerciseID string
	Author     string
	Text       string
}

// GameItem is one piece of game content, append-only per category.
type GameItem struct {
	Category string
	Data     string
}

// Session is the authenticated identity bound to one live connection.
// At most one session exists per username at a time.
type Session struct {
	Username     string
	Role         Role
	Level        Level
	ConnectionID string
}
