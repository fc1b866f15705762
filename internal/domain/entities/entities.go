package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Common errors
var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("conflict")
	ErrAuthentication = errors.New("invalid credentials")
	ErrStorage        = errors.New("storage failure")
	ErrNotFound       = errors.New("not found")
)

// Account constraints
const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
	PasswordMinLength = 3
)

// DefaultTopScores is the size of the public leaderboard.
const DefaultTopScores = 10

// ScoreEntry is one player's best score on the leaderboard
type ScoreEntry struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

// UnmarshalJSON reads a stored entry leniently: a missing, null or
// unparseable score reads as 0, numeric strings and floats are truncated,
// a non-string name reads as "". An element that is not an object decodes
// to the zero entry so one bad record cannot fail the whole file.
func (e *ScoreEntry) UnmarshalJSON(data []byte) error {
	fields := decodeObject(data)

	e.Name = parseString(fields["name"])
	e.Score = parseScore(fields["score"])
	return nil
}

// NameKey folds a player name to the key names are unique under
func NameKey(name string) string {
	return strings.ToLower(name)
}

// SameName reports whether name refers to this entry's player.
func (e *ScoreEntry) SameName(name string) bool {
	return NameKey(e.Name) == NameKey(name)
}

// Raise stores score if it beats the current one and reports whether it did.
func (e *ScoreEntry) Raise(score int64) bool {
	if score > e.Score {
		e.Score = score
		return true
	}
	return false
}

func parseScore(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	literal := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		literal = strings.TrimSpace(s)
	}

	if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(literal, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		if f >= math.MaxInt64 {
			return math.MaxInt64
		}
		if f <= math.MinInt64 {
			return math.MinInt64
		}
		return int64(f)
	}
	return 0
}

// UserAccount represents a registered player account
type UserAccount struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// UnmarshalJSON also accepts the legacy "password" key for the digest.
// Like ScoreEntry, non-string fields read as "" and a non-object element
// decodes to the zero account.
func (u *UserAccount) UnmarshalJSON(data []byte) error {
	fields := decodeObject(data)

	u.Username = parseString(fields["username"])
	u.PasswordHash = parseString(fields["passwordHash"])
	if u.PasswordHash == "" {
		u.PasswordHash = parseString(fields["password"])
	}
	return nil
}

// decodeObject returns the members of a JSON object, or nil for anything else
func decodeObject(data []byte) map[string]json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	return fields
}

func parseString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
