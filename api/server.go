// Package api exposes the HTTP surface: teams, schedule, standings,
// synchronous simulation, background simulation jobs, and overrides.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gridironmc/gridiron/jobs"
	"github.com/gridironmc/gridiron/montecarlo"
	"github.com/gridironmc/gridiron/nfl"
	"github.com/gridironmc/gridiron/overrides"
	"github.com/gridironmc/gridiron/standings"
)

// Server wires the domain pieces behind a gin router. The schedule snapshot
// is immutable after construction; overrides are applied per request.
type Server struct {
	lg     *nfl.League
	sched  *nfl.Schedule
	ovr    *overrides.Store
	jobs   *jobs.Manager
	logger zerolog.Logger
	router *gin.Engine
	start  time.Time
}

// NewServer builds the router.
func NewServer(lg *nfl.League, sched *nfl.Schedule, ovr *overrides.Store, jm *jobs.Manager, logger zerolog.Logger) *Server {
	s := &Server{
		lg:     lg,
		sched:  sched,
		ovr:    ovr,
		jobs:   jm,
		logger: logger,
		start:  time.Now(),
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/status", s.getStatus)
	r.GET("/teams", s.getTeams)
	r.GET("/schedule", s.getSchedule)
	r.GET("/standings", s.getStandings)
	r.POST("/simulate", s.postSimulate)
	r.POST("/simulation-jobs", s.postSimulationJob)
	r.GET("/simulation-jobs/:id", s.getSimulationJob)
	r.DELETE("/simulation-jobs/:id", s.deleteSimulationJob)
	r.POST("/override", s.postOverride)

	s.router = r
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		s.logger.Debug().Str("method", c.Request.Method).Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).Dur("elapsed", time.Since(t)).Msg("request")
	}
}

// effective returns a schedule copy with the current overrides stamped on.
func (s *Server) effective() *nfl.Schedule {
	return s.ovr.Apply(s.sched)
}

func (s *Server) getStatus(c *gin.Context) {
	resolved := 0
	eff := s.effective()
	for i := range eff.Games {
		if eff.Games[i].Resolved() {
			resolved++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"season":         s.sched.Season,
		"teams":          s.lg.NumTeams(),
		"games":          len(s.sched.Games),
		"resolved_games": resolved,
		"overrides":      s.ovr.Len(),
		"uptime_seconds": int(time.Since(s.start).Seconds()),
	})
}

func (s *Server) getTeams(c *gin.Context) {
	c.JSON(http.StatusOK, s.lg.Teams())
}

func (s *Server) getSchedule(c *gin.Context) {
	eff := s.effective()
	if weekStr := c.Query("week"); weekStr != "" {
		week, err := strconv.Atoi(weekStr)
		if err != nil || week < 1 || week > nfl.RegularSeasonWeeks {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week", "field": "week"})
			return
		}
		c.JSON(http.StatusOK, eff.Week(week))
		return
	}
	c.JSON(http.StatusOK, eff.Games)
}

func (s *Server) getStandings(c *gin.Context) {
	eff := s.effective()
	tbl := standings.Compute(s.lg, eff, eff.ResolvedOutcomes())
	c.JSON(http.StatusOK, tbl.Standings())
}

type simulateRequest struct {
	NumSimulations int     `json:"num_simulations"`
	RandomSeed     *uint64 `json:"random_seed"`
}

// postSimulate runs the simulation synchronously. Kept for older clients;
// new ones should use /simulation-jobs.
func (s *Server) postSimulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NumSimulations < 1 || req.NumSimulations > montecarlo.MaxTrials {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": montecarlo.ErrTrialsOutOfRange.Error(),
			"field": "num_simulations",
		})
		return
	}
	seed := montecarlo.RandomSeed()
	if req.RandomSeed != nil {
		seed = *req.RandomSeed
	}
	sim := montecarlo.New(s.lg, s.effective())
	ctx := s.logger.WithContext(c.Request.Context())
	res, err := sim.Simulate(ctx, req.NumSimulations, seed, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) postSimulationJob(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := s.jobs.Start(s.effective(), req.NumSimulations, req.RandomSeed)
	switch {
	case errors.Is(err, jobs.ErrSimulationActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, montecarlo.ErrTrialsOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "num_simulations"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) getSimulationJob(c *gin.Context) {
	job, err := s.jobs.Get(c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) deleteSimulationJob(c *gin.Context) {
	job, err := s.jobs.Cancel(c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

type overrideRequest struct {
	GameID       string `json:"game_id"`
	HomeScore    *int   `json:"home_score"`
	AwayScore    *int   `json:"away_score"`
	IsOverridden bool   `json:"is_overridden"`
}

func (s *Server) postOverride(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := s.sched.GameIndex(req.GameID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game", "field": "game_id"})
		return
	}
	if !req.IsOverridden {
		if err := s.ovr.Clear(req.GameID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	if req.HomeScore == nil || req.AwayScore == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "home_score and away_score are required", "field": "home_score"})
		return
	}
	if *req.HomeScore < 0 || *req.AwayScore < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scores must be non-negative", "field": "home_score"})
		return
	}
	if err := s.ovr.Set(req.GameID, *req.HomeScore, *req.AwayScore); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
