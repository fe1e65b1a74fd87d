package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/dailyguess/assets"
	"github.com/robalobadob/dailyguess/internal/actual"
	"github.com/robalobadob/dailyguess/internal/auth"
	"github.com/robalobadob/dailyguess/internal/category"
	"github.com/robalobadob/dailyguess/internal/daily"
	"github.com/robalobadob/dailyguess/internal/database"
	"github.com/robalobadob/dailyguess/internal/game"
	"github.com/robalobadob/dailyguess/internal/store"
)

// One observation per category so the day's pick is known. CURRENCY is
// deliberately missing to exercise the upstream failure path.
const testSeries = `
series:
  STOCK:       [{ date: "2024-03-05", value: "153.00" }]
  T_10:        [{ date: "2024-03-05", value: "1.53" }]
  T_OVERNIGHT: [{ date: "2024-03-05", value: "5.31" }]
`

// tickingClock advances 5s per call.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(5 * time.Second)
	return t
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerAt(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))
}

func newTestServerAt(t *testing.T, start time.Time) *httptest.Server {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	migrations, err := assets.Migrations()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, migrations))

	reg, err := category.Default()
	require.NoError(t, err)
	series, err := actual.ParseSeries([]byte(testSeries), "salt")
	require.NoError(t, err)
	clock := &tickingClock{now: start}

	srv := New(Deps{
		Categories:   reg,
		Sessions:     store.NewMemoryStore(),
		Actuals:      series,
		Charts:       series,
		Results:      daily.NewStore(db),
		Users:        auth.NewUsers(db),
		Signer:       auth.NewSigner("test-secret", time.Hour),
		Now:          clock.Now,
		ClientOrigin: "http://localhost:5173",
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func call(t *testing.T, c *http.Client, method, url string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func startGame(t *testing.T, ts *httptest.Server, c *http.Client, cat string) string {
	t.Helper()
	code, res := call(t, c, http.MethodPost, ts.URL+"/game/"+cat+"/new", nil)
	require.Equal(t, http.StatusOK, code, res)
	require.Equal(t, false, res["played"])
	id, _ := res["resultId"].(string)
	require.NotEmpty(t, id)
	return id
}

func guess(t *testing.T, ts *httptest.Server, c *http.Client, cat, id string, g any) (int, map[string]any) {
	t.Helper()
	return call(t, c, http.MethodPost, ts.URL+"/game/"+cat+"/guess", map[string]any{"resultId": id, "guess": g})
}

func TestHealthAndCategories(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	code, res := call(t, c, http.MethodGet, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, res["ok"])

	resp, err := c.Get(ts.URL + "/categories")
	require.NoError(t, err)
	defer resp.Body.Close()
	var cats []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cats))
	require.Len(t, cats, len(category.Known))
	assert.Equal(t, "CURRENCY", cats[0]["id"])
}

func TestNewGame(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	code, res := call(t, c, http.MethodPost, ts.URL+"/game/stock/new", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2024-03-05", res["date"])
	assert.EqualValues(t, 6, res["maxGuesses"])
	cat := res["category"].(map[string]any)
	assert.Equal(t, "STOCK", cat["id"])
	assert.EqualValues(t, 2, cat["decimal"])
	assert.EqualValues(t, 5, cat["width"])
	assert.NotContains(t, res, "actual")

	code, res = call(t, c, http.MethodPost, ts.URL+"/game/GOLD/new", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "unknown_category", res["error"])

	code, res = call(t, c, http.MethodPost, ts.URL+"/game/CURRENCY/new", nil)
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "upstream_unavailable", res["error"])
}

func TestGuessFlowWin(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	id := startGame(t, ts, c, "STOCK")

	code, res := guess(t, ts, c, "STOCK", id, "15200")
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, "up", res["direction"])
	assert.EqualValues(t, 1, res["amount"])
	assert.Equal(t, true, res["isClose"])
	assert.InDelta(t, 1.0, res["difference"], 1e-9)
	assert.Equal(t, false, res["isComplete"])
	assert.EqualValues(t, 1, res["tries"])
	assert.EqualValues(t, 5, res["remaining"])
	assert.Nil(t, res["timeTaken"])
	assert.NotContains(t, res, "actual")
	display := res["display"].(map[string]any)
	assert.Equal(t, []any{"↑"}, display["glyphs"])
	assert.EqualValues(t, 5, display["slots"])

	code, res = guess(t, ts, c, "STOCK", id, "15300")
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, "exact", res["direction"])
	assert.EqualValues(t, 0, res["amount"])
	assert.Equal(t, true, res["isComplete"])
	assert.Equal(t, true, res["correct"])
	assert.EqualValues(t, 2, res["tries"])
	assert.Equal(t, "153.00", res["actual"])
	assert.NotNil(t, res["timeTaken"])
	assert.Len(t, res["chart"], 1)

	code, res = guess(t, ts, c, "STOCK", id, "15300")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "game_finished", res["error"])

	code, res = call(t, c, http.MethodPost, ts.URL+"/game/STOCK/new", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, res["played"])
	assert.NotContains(t, res, "resultId")
}

func TestGuessExhausted(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	id := startGame(t, ts, c, "T_10")

	for i := 1; i <= 6; i++ {
		code, res := guess(t, ts, c, "T_10", id, "200")
		require.Equal(t, http.StatusOK, code, res)
		assert.Equal(t, "down", res["direction"])
		assert.Equal(t, i == 6, res["isComplete"])
	}

	code, res := guess(t, ts, c, "T_10", id, "153")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "game_finished", res["error"])
}

func TestGuessValidation(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	id := startGame(t, ts, c, "T_10")

	for _, bad := range []any{"1.5", "abc", "", "1234", 1.5} {
		code, res := guess(t, ts, c, "T_10", id, bad)
		assert.Equal(t, http.StatusBadRequest, code, bad)
		assert.Equal(t, "invalid_guess", res["error"], bad)
	}

	// numeric guesses are accepted and the rejected ones did not count
	code, res := guess(t, ts, c, "T_10", id, 153)
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, "exact", res["direction"])
	assert.EqualValues(t, 1, res["tries"])

	code, res = call(t, c, http.MethodPost, ts.URL+"/game/T_10/guess", map[string]any{"guess": "153"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "missing_result_id", res["error"])
}

func TestGuessOwnership(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t)
	id := startGame(t, ts, alice, "STOCK")

	code, _ := guess(t, ts, newClient(t), "STOCK", id, "15300")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = guess(t, ts, alice, "T_10", id, "153")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = guess(t, ts, alice, "STOCK", "missing", "153")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestResumeSession(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	id := startGame(t, ts, c, "T_OVERNIGHT")

	code, _ := guess(t, ts, c, "T_OVERNIGHT", id, "500")
	require.Equal(t, http.StatusOK, code)

	// the same session comes back with or without a (possibly bogus) resultId
	for _, body := range []any{nil, map[string]string{"resultId": "something-else"}} {
		code, res := call(t, c, http.MethodPost, ts.URL+"/game/T_OVERNIGHT/new", body)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, id, res["resultId"])
		guesses := res["guesses"].([]any)
		require.Len(t, guesses, 1)
		assert.Equal(t, "500", guesses[0].(map[string]any)["guess"])
		assert.Equal(t, "up", guesses[0].(map[string]any)["direction"])
	}
}

func TestOneSessionPerDay(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	id := startGame(t, ts, c, "STOCK")

	code, res := call(t, c, http.MethodPost, ts.URL+"/game/STOCK/new", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, id, res["resultId"])

	accepted := 0
	for round := 0; round < 3; round++ {
		code, res = call(t, c, http.MethodPost, ts.URL+"/game/STOCK/new", nil)
		require.Equal(t, http.StatusOK, code)
		if res["played"] == true {
			break
		}
		assert.Equal(t, id, res["resultId"])
		for i := 0; i < 5; i++ {
			if code, _ := guess(t, ts, c, "STOCK", id, "10000"); code == http.StatusOK {
				accepted++
			}
		}
	}
	assert.Equal(t, game.MaxGuesses, accepted)

	code, res = call(t, c, http.MethodPost, ts.URL+"/game/STOCK/new", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, res["played"])
	assert.NotContains(t, res, "resultId")

	code, res = guess(t, ts, c, "STOCK", id, "15300")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "game_finished", res["error"])

	// other categories are unaffected
	assert.NotEqual(t, id, startGame(t, ts, c, "T_10"))
}

func TestGuessAfterMidnight(t *testing.T) {
	// /new reads the clock at 23:59:50, session start at 23:59:55, the guess at 00:00:00
	ts := newTestServerAt(t, time.Date(2024, 3, 5, 23, 59, 50, 0, time.UTC))
	c := newClient(t)
	id := startGame(t, ts, c, "STOCK")

	code, res := guess(t, ts, c, "STOCK", id, "15300")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "expired", res["error"])

	code, res = call(t, c, http.MethodPost, ts.URL+"/game/STOCK/new", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2024-03-06", res["date"])
	assert.NotEqual(t, id, res["resultId"])
	assert.Empty(t, res["guesses"])
}

func TestAuthFlowAndStats(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	code, _ := call(t, c, http.MethodGet, ts.URL+"/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res := call(t, c, http.MethodPost, ts.URL+"/auth/signup", credentials{Username: "alice", Password: "password123"})
	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, "alice", res["username"])

	code, res = call(t, c, http.MethodPost, ts.URL+"/auth/signup", credentials{Username: "alice", Password: "password123"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "username_taken", res["error"])

	code, res = call(t, c, http.MethodGet, ts.URL+"/auth/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", res["username"])

	id := startGame(t, ts, c, "STOCK")
	code, _ = guess(t, ts, c, "STOCK", id, "15300")
	require.Equal(t, http.StatusOK, code)

	code, res = call(t, c, http.MethodGet, ts.URL+"/stats/me", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, res["gamesPlayed"])
	assert.EqualValues(t, 1, res["wins"])
	assert.EqualValues(t, 1, res["streak"])

	resp, err := c.Get(ts.URL + "/results/mine")
	require.NoError(t, err)
	var results []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	resp.Body.Close()
	require.Len(t, results, 1)
	assert.Equal(t, "STOCK", results[0]["category"])

	code, _ = call(t, c, http.MethodPost, ts.URL+"/auth/logout", nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, c, http.MethodGet, ts.URL+"/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res = call(t, c, http.MethodPost, ts.URL+"/auth/login", credentials{Username: "alice", Password: "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_credentials", res["error"])

	code, _ = call(t, c, http.MethodPost, ts.URL+"/auth/login", credentials{Username: "alice", Password: "password123"})
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, c, http.MethodGet, ts.URL+"/auth/me", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestBearerToken(t *testing.T) {
	ts := newTestServer(t)

	// validly signed, but for a user that does not exist
	tok, _, err := auth.NewSigner("test-secret", time.Hour).Sign("unknown-user", "ghost")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
