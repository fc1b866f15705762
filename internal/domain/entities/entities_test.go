package entities

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreEntry_UnmarshalLenient(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{name: "integer", in: `{"name":"a","score":42}`, want: 42},
		{name: "numeric string", in: `{"name":"a","score":"17"}`, want: 17},
		{name: "padded string", in: `{"name":"a","score":" 8 "}`, want: 8},
		{name: "float", in: `{"name":"a","score":3.9}`, want: 3},
		{name: "float string", in: `{"name":"a","score":"2.5"}`, want: 2},
		{name: "exponent", in: `{"name":"a","score":1e3}`, want: 1000},
		{name: "huge", in: `{"name":"a","score":1e30}`, want: math.MaxInt64},
		{name: "null", in: `{"name":"a","score":null}`, want: 0},
		{name: "missing", in: `{"name":"a"}`, want: 0},
		{name: "word", in: `{"name":"a","score":"abc"}`, want: 0},
		{name: "bool", in: `{"name":"a","score":true}`, want: 0},
		{name: "object", in: `{"name":"a","score":{}}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e ScoreEntry
			require.NoError(t, json.Unmarshal([]byte(tt.in), &e))
			assert.Equal(t, "a", e.Name)
			assert.Equal(t, tt.want, e.Score)
		})
	}
}

func TestScoreEntry_UnmarshalMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ScoreEntry
	}{
		{name: "numeric name", in: `{"name":123,"score":4}`, want: ScoreEntry{Score: 4}},
		{name: "object name", in: `{"name":{"x":1},"score":"2"}`, want: ScoreEntry{Score: 2}},
		{name: "string element", in: `"alice"`, want: ScoreEntry{}},
		{name: "number element", in: `7`, want: ScoreEntry{}},
		{name: "array element", in: `[1,2]`, want: ScoreEntry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e ScoreEntry
			require.NoError(t, json.Unmarshal([]byte(tt.in), &e))
			assert.Equal(t, tt.want, e)
		})
	}
}

func TestScoreEntry_UnmarshalArrayWithBadElements(t *testing.T) {
	var entries []ScoreEntry
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"alice","score":50},{"name":123,"score":1},true]`), &entries))

	assert.Equal(t, []ScoreEntry{{Name: "alice", Score: 50}, {Score: 1}, {}}, entries)
}

func TestScoreEntry_SameName(t *testing.T) {
	e := ScoreEntry{Name: "Alice"}

	assert.True(t, e.SameName("alice"))
	assert.True(t, e.SameName("ALICE"))
	assert.False(t, e.SameName("alice "))
	assert.False(t, e.SameName("bob"))
}

func TestScoreEntry_Raise(t *testing.T) {
	e := ScoreEntry{Name: "a", Score: 5}

	assert.False(t, e.Raise(3))
	assert.Equal(t, int64(5), e.Score)
	assert.False(t, e.Raise(5))
	assert.True(t, e.Raise(8))
	assert.Equal(t, int64(8), e.Score)
}

func TestUserAccount_Unmarshal(t *testing.T) {
	var u UserAccount
	require.NoError(t, json.Unmarshal([]byte(`{"username":"bob","password":"abc123"}`), &u))
	assert.Equal(t, UserAccount{Username: "bob", PasswordHash: "abc123"}, u)

	u = UserAccount{}
	require.NoError(t, json.Unmarshal([]byte(`{"username":"bob","passwordHash":"new","password":"old"}`), &u))
	assert.Equal(t, "new", u.PasswordHash)

	u = UserAccount{}
	require.NoError(t, json.Unmarshal([]byte(`{"username":7,"passwordHash":null,"password":"old"}`), &u))
	assert.Equal(t, UserAccount{PasswordHash: "old"}, u)

	var accounts []UserAccount
	require.NoError(t, json.Unmarshal([]byte(`[{"username":"bob","passwordHash":"h"},"junk"]`), &accounts))
	assert.Equal(t, []UserAccount{{Username: "bob", PasswordHash: "h"}, {}}, accounts)
}

func TestUserAccount_MarshalUsesHashKey(t *testing.T) {
	data, err := json.Marshal(UserAccount{Username: "bob", PasswordHash: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"bob","passwordHash":"abc"}`, string(data))
}
