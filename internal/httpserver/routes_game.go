// internal/httpserver/routes_game.go
//
// HTTP routes for the daily challenge, one set per category:
//   - POST /game/{category}/new   → start (or resume) today's session
//   - POST /game/{category}/guess → submit a guess for a session
//
// Each player gets one session per category per day (keyed by owner, category
// and date in the store) and one recorded result (daily_results). Guesses on a
// session from an earlier day are rejected.
// Sessions live in the session store between requests; concurrent guesses on
// one session are rejected by the store's version check.

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/dailyguess/internal/actual"
	"github.com/robalobadob/dailyguess/internal/category"
	"github.com/robalobadob/dailyguess/internal/daily"
	"github.com/robalobadob/dailyguess/internal/game"
	"github.com/robalobadob/dailyguess/internal/store"
)

// chartPoints is how many observations the completion payload carries.
const chartPoints = 30

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game/{category}", func(r chi.Router) {
		r.Post("/new", s.handleNew)
		r.Post("/guess", s.handleGuess)
	})
}

// categoryRes is the public view of a category.
type categoryRes struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Decimal     int    `json:"decimal"`
	Width       int    `json:"width"`
	Threshold   string `json:"threshold"`
}

func toCategoryRes(c category.Config) categoryRes {
	return categoryRes{
		ID:          c.ID,
		Kind:        string(c.Kind),
		Description: c.Description,
		Unit:        c.DisplayUnit,
		Decimal:     c.DecimalPlaces,
		Width:       c.Width,
		Threshold:   c.ClosenessThreshold.String(),
	}
}

// handleCategories lists every category.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	list := s.Categories.List()
	out := make([]categoryRes, 0, len(list))
	for _, c := range list {
		out = append(out, toCategoryRes(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// resolveCategory reads {category} from the path, writing a 404 when unknown.
func (s *Server) resolveCategory(w http.ResponseWriter, r *http.Request) (category.Config, bool) {
	cfg, err := s.Categories.Resolve(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown_category")
		return category.Config{}, false
	}
	return cfg, true
}

// -----------------------------------------------------------------------------
// /game/{category}/new

// newRes is returned by /game/{category}/new.
type newRes struct {
	ResultID   string      `json:"resultId,omitempty"`
	Date       string      `json:"date"`
	Category   categoryRes `json:"category"`
	MaxGuesses int         `json:"maxGuesses"`
	Played     bool        `json:"played"`
	Guesses    []guessView `json:"guesses"`
}

// guessView is a previously scored guess, for resuming a session.
type guessView struct {
	Guess     string           `json:"guess"`
	Direction game.Direction   `json:"direction"`
	Amount    int              `json:"amount"`
	IsClose   bool             `json:"isClose"`
	Display   game.DisplayPlan `json:"display"`
}

// handleNew returns the player's one session for today in this category.
// - If the player already has a result for today → Played=true.
// - If the player already has a session for today → resume it (Played=true once finished).
// - Otherwise fetch today's actual value and create the session.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.resolveCategory(w, r)
	if !ok {
		return
	}
	owner, _ := s.playerID(w, r)
	now := s.Now()
	date := daily.DateKey(now)
	res := newRes{Date: date, Category: toCategoryRes(cfg), MaxGuesses: game.MaxGuesses, Guesses: []guessView{}}

	played, err := s.Results.AlreadyPlayed(r.Context(), owner, cfg.ID, date)
	if err != nil {
		log.Error().Err(err).Str("owner", owner).Msg("check daily result")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if played {
		res.Played = true
		writeJSON(w, http.StatusOK, res)
		return
	}

	sess, err := s.Sessions.FindByOwner(r.Context(), owner, cfg.ID, date)
	if errors.Is(err, store.ErrNotFound) {
		sess, err = s.startSession(r, cfg, owner, date, now)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if sess.Status.Terminal() {
		res.Played = true
		writeJSON(w, http.StatusOK, res)
		return
	}

	res.ResultID = sess.ResultID
	for _, g := range sess.Guesses {
		res.Guesses = append(res.Guesses, guessView{
			Guess:     g.RawInput,
			Direction: g.Result.Direction,
			Amount:    g.Result.Magnitude,
			IsClose:   g.Result.IsClose,
			Display:   game.Plan(g.Result),
		})
	}
	writeJSON(w, http.StatusOK, res)
}

// startSession creates today's session for owner. A concurrent /new by the same
// owner loses on the store's owner/category/date key and gets the winner's session.
func (s *Server) startSession(r *http.Request, cfg category.Config, owner, date string, now time.Time) (*game.Session, error) {
	value, err := s.Actuals.Actual(r.Context(), cfg.ID, now)
	if err != nil {
		return nil, err
	}
	sess := s.Engine.NewSession(uuid.NewString(), cfg, date, value)
	sess.OwnerID = owner
	if err := s.Sessions.Create(r.Context(), sess); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return s.Sessions.FindByOwner(r.Context(), owner, cfg.ID, date)
		}
		return nil, fmt.Errorf("create session %s: %w", sess.ResultID, err)
	}
	return sess, nil
}

// -----------------------------------------------------------------------------
// /game/{category}/guess

// rawGuess accepts the guess as a JSON string ("00153") or number (153).
type rawGuess string

func (g *rawGuess) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*g = rawGuess(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*g = rawGuess(n.String())
	return nil
}

// guessReq is the request payload for /game/{category}/guess.
type guessReq struct {
	ResultID string   `json:"resultId"`
	Guess    rawGuess `json:"guess"`
}

// guessRes is the response payload for /game/{category}/guess.
type guessRes struct {
	Direction  game.Direction       `json:"direction"`
	Amount     int                  `json:"amount"`
	IsClose    bool                 `json:"isClose"`
	Difference float64              `json:"difference"` // absolute
	IsComplete bool                 `json:"isComplete"`
	Correct    bool                 `json:"correct"`
	Tries      int                  `json:"tries"`
	Remaining  int                  `json:"remaining"`
	TimeTaken  *float64             `json:"timeTaken"`
	Display    game.DisplayPlan     `json:"display"`
	Actual     string               `json:"actual,omitempty"` // only once complete
	Chart      []actual.Observation `json:"chart,omitempty"`
}

// handleGuess loads the session, applies the guess and persists it.
// On completion the result is recorded and the actual value revealed.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.resolveCategory(w, r)
	if !ok {
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.ResultID == "" {
		writeError(w, http.StatusBadRequest, "missing_result_id")
		return
	}
	owner, signedIn := s.playerID(w, r)

	sess, err := s.Sessions.Get(r.Context(), req.ResultID)
	if err != nil || sess.Category.ID != cfg.ID || sess.OwnerID != owner {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("resultId", req.ResultID).Msg("load session")
		}
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	// yesterday's session is closed once the next day's challenge opens
	if sess.Date != daily.DateKey(s.Now()) {
		writeError(w, http.StatusConflict, "expired")
		return
	}

	score, out, err := s.Engine.SubmitGuess(sess, string(req.Guess))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.Sessions.Save(r.Context(), sess); err != nil {
		writeEngineError(w, err)
		return
	}

	res := guessRes{
		Direction:  score.Direction,
		Amount:     score.Magnitude,
		IsClose:    score.IsClose,
		Difference: score.AbsDifference().InexactFloat64(),
		IsComplete: out.IsComplete,
		Correct:    out.Correct,
		Tries:      out.TriesUsed,
		Remaining:  sess.Remaining(),
		TimeTaken:  out.TimeTakenSeconds,
		Display:    game.Plan(score),
	}
	if out.IsComplete {
		res.Actual = game.FormatValue(sess.ActualValue, cfg.DecimalPlaces)
		s.recordCompletion(r, sess, out, signedIn)
		if s.Charts != nil {
			day, _ := time.Parse("2006-01-02", sess.Date)
			if pts, err := s.Charts.Window(r.Context(), cfg.ID, day, chartPoints); err == nil {
				res.Chart = pts
			} else {
				log.Warn().Err(err).Str("category", cfg.ID).Msg("chart window")
			}
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// recordCompletion persists the daily result and bumps user stats (best effort).
func (s *Server) recordCompletion(r *http.Request, sess *game.Session, out game.Outcome, signedIn bool) {
	var elapsed int64
	if out.TimeTakenSeconds != nil {
		elapsed = int64(*out.TimeTakenSeconds * 1000)
	}
	wrote, err := s.Results.InsertResult(r.Context(), daily.Result{
		UserID:    sess.OwnerID,
		Category:  sess.Category.ID,
		Date:      sess.Date,
		ResultID:  sess.ResultID,
		Guesses:   out.TriesUsed,
		ElapsedMs: elapsed,
		Correct:   out.Correct,
	})
	if err != nil {
		log.Warn().Err(err).Str("resultId", sess.ResultID).Msg("insert daily result")
		return
	}
	if wrote && signedIn {
		if err := s.Users.RecordGame(r.Context(), sess.OwnerID, out.Correct); err != nil {
			log.Warn().Err(err).Str("user", sess.OwnerID).Msg("record game stats")
		}
	}
}

// writeEngineError maps engine and collaborator errors to HTTP responses.
func writeEngineError(w http.ResponseWriter, err error) {
	var (
		invalid  *game.InvalidFormatError
		closed   *game.SessionClosedError
		unknown  *category.UnknownCategoryError
		upstream *actual.UpstreamDataError
	)
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, "invalid_guess")
	case errors.As(err, &closed):
		writeError(w, http.StatusConflict, "game_finished")
	case errors.As(err, &unknown):
		writeError(w, http.StatusNotFound, "unknown_category")
	case errors.As(err, &upstream):
		log.Error().Err(err).Msg("actual value unavailable")
		writeError(w, http.StatusBadGateway, "upstream_unavailable")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
