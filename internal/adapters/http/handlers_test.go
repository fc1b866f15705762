package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flapboard/core/internal/domain/entities"
	"github.com/flapboard/core/internal/infrastructure/logger"
	"github.com/flapboard/core/internal/ports"
)

type structValidator struct {
	v *validator.Validate
}

func (sv *structValidator) Validate(i interface{}) error {
	if err := sv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type fakeLeaderboard struct {
	submitErr error
	submitted []entities.ScoreEntry
	top       []entities.ScoreEntry
	topLimit  int
}

func (f *fakeLeaderboard) Submit(ctx context.Context, name string, score int64) (*ports.SubmitResult, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	entry := entities.ScoreEntry{Name: name, Score: score}
	f.submitted = append(f.submitted, entry)
	return &ports.SubmitResult{Entry: entry, Created: true}, nil
}

func (f *fakeLeaderboard) TopScores(ctx context.Context, n int) []entities.ScoreEntry {
	f.topLimit = n
	return f.top
}

func (f *fakeLeaderboard) Rank(ctx context.Context, name string) (*ports.RankedEntry, error) {
	return nil, entities.ErrNotFound
}

type fakeAccounts struct {
	registerErr error
	loginErr    error
}

func (f *fakeAccounts) Register(ctx context.Context, username, password string) error {
	return f.registerErr
}

func (f *fakeAccounts) Login(ctx context.Context, username, password string) error {
	return f.loginErr
}

func newContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = &structValidator{v: validator.New()}

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected *echo.HTTPError, got %v", err)
	return he.Code
}

func TestGetScores(t *testing.T) {
	lb := &fakeLeaderboard{top: []entities.ScoreEntry{{Name: "bob", Score: 9}, {Name: "alice", Score: 5}}}
	h := NewLeaderboardHandler(lb, logger.NewNop())

	c, rec := newContext(http.MethodGet, "/scores", "")
	require.NoError(t, h.GetScores(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entities.DefaultTopScores, lb.topLimit)
	assert.JSONEq(t, `[{"name":"bob","score":9},{"name":"alice","score":5}]`, rec.Body.String())
}

func TestSubmitScore(t *testing.T) {
	lb := &fakeLeaderboard{}
	h := NewLeaderboardHandler(lb, logger.NewNop())

	c, rec := newContext(http.MethodPost, "/submit", `{"name":"alice","score":0}`)
	require.NoError(t, h.SubmitScore(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Score saved"}`, rec.Body.String())
	assert.Equal(t, []entities.ScoreEntry{{Name: "alice", Score: 0}}, lb.submitted)
}

func TestSubmitScore_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		submitErr error
		want      int
	}{
		{name: "bad json", body: `{`, want: http.StatusBadRequest},
		{name: "missing score", body: `{"name":"alice"}`, want: http.StatusBadRequest},
		{name: "negative score", body: `{"name":"alice","score":-3}`, want: http.StatusBadRequest},
		{
			name:      "service validation",
			body:      `{"name":" ","score":1}`,
			submitErr: fmt.Errorf("%w: name must not be empty", entities.ErrValidation),
			want:      http.StatusBadRequest,
		},
		{
			name:      "storage failure",
			body:      `{"name":"alice","score":1}`,
			submitErr: fmt.Errorf("failed to save score: %w", entities.ErrStorage),
			want:      http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lb := &fakeLeaderboard{submitErr: tt.submitErr}
			h := NewLeaderboardHandler(lb, logger.NewNop())

			c, _ := newContext(http.MethodPost, "/submit", tt.body)
			err := h.SubmitScore(c)

			assert.Equal(t, tt.want, httpStatus(t, err))
			assert.Empty(t, lb.submitted)
		})
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		registerErr error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "success",
			body:        `{"username":"alice","password":"secret"}`,
			wantStatus:  http.StatusOK,
			wantMessage: "Registration successful",
		},
		{
			name:        "taken",
			body:        `{"username":"alice","password":"secret"}`,
			registerErr: fmt.Errorf("%w: username already exists", entities.ErrConflict),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Username already exists",
		},
		{
			name:        "storage failure",
			body:        `{"username":"alice","password":"secret"}`,
			registerErr: fmt.Errorf("failed to save account: %w", entities.ErrStorage),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to save data",
		},
		{
			name:       "short username",
			body:       `{"username":"al","password":"secret"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAccountHandler(&fakeAccounts{registerErr: tt.registerErr}, logger.NewNop())

			c, rec := newContext(http.MethodPost, "/register", tt.body)
			err := h.Register(c)

			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.JSONEq(t, `{"message":"`+tt.wantMessage+`"}`, rec.Body.String())
				return
			}

			assert.Equal(t, tt.wantStatus, httpStatus(t, err))
			if tt.wantMessage != "" {
				var he *echo.HTTPError
				require.True(t, errors.As(err, &he))
				assert.Equal(t, tt.wantMessage, he.Message)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	h := NewAccountHandler(&fakeAccounts{}, logger.NewNop())
	c, rec := newContext(http.MethodPost, "/login", `{"username":"alice","password":"secret"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Login successful"}`, rec.Body.String())

	h = NewAccountHandler(&fakeAccounts{loginErr: entities.ErrAuthentication}, logger.NewNop())
	c, _ = newContext(http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`)
	err := h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestErrorMessage(t *testing.T) {
	inner := fmt.Errorf("%w: name must not be empty", entities.ErrValidation)

	assert.Equal(t, "validation failed: name must not be empty",
		errorMessage(fmt.Errorf("failed to save score: %w", inner)))
	assert.Equal(t, "validation failed: name must not be empty", errorMessage(inner))
	assert.Equal(t, "plain", errorMessage(errors.New("plain")))
}

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: x", entities.ErrValidation), want: http.StatusBadRequest},
		{err: fmt.Errorf("%w: x", entities.ErrConflict), want: http.StatusBadRequest},
		{err: entities.ErrAuthentication, want: http.StatusUnauthorized},
		{err: fmt.Errorf("%w: x", entities.ErrNotFound), want: http.StatusNotFound},
		{err: entities.ErrStorage, want: http.StatusInternalServerError},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, httpStatus(t, toHTTPError(tt.err)), tt.err.Error())
	}
}
