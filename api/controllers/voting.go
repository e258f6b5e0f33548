package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pwbcr2502-crypto/galass/api/models"
	"github.com/pwbcr2502-crypto/galass/api/transport"
	"github.com/pwbcr2502-crypto/galass/auth"
	"github.com/pwbcr2502-crypto/galass/logging"
	"github.com/pwbcr2502-crypto/galass/notify"
	"github.com/pwbcr2502-crypto/galass/storage"
	"github.com/pwbcr2502-crypto/galass/voting"
)

type VotingController struct {
	eventsStorage     storage.EventStorage
	programsStorage   storage.ProgramStorage
	votesStorage      storage.VoteStorage
	statisticsStorage storage.StatisticStorage
	sessionsStorage   storage.SessionStorage
	issuer            *auth.TokenIssuer
	bus               notify.Bus
}

func NewVotingController(eventStorage storage.EventStorage, programStorage storage.ProgramStorage, voteStorage storage.VoteStorage, statisticStorage storage.StatisticStorage, sessionStorage storage.SessionStorage, issuer *auth.TokenIssuer, bus notify.Bus) *VotingController {
	return &VotingController{
		eventsStorage:     eventStorage,
		programsStorage:   programStorage,
		votesStorage:      voteStorage,
		statisticsStorage: statisticStorage,
		sessionsStorage:   sessionStorage,
		issuer:            issuer,
		bus:               bus,
	}
}

func (c *VotingController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api")
	group.Use(transport.AuthMiddleware(c.issuer, c.sessionsStorage))

	group.POST("/votes", c.submitVote)
	group.GET("/votes/mine", c.getMyVotes)
	group.GET("/votes/can-vote/:programId", c.canVote)
	group.GET("/statistics/programs/:id", c.getProgramStatistics)
	group.GET("/statistics/leaderboard", c.getLeaderboard)
}

// submitVote godoc
// @Summary Submit a vote
// @Description Accepts the five dimension scores for one program inside its voting window
// @Tags voting
// @Accept json
// @Produce json
// @Param vote body models.SubmitVotePayload true "Vote submission"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response "Invalid scores"
// @Failure 403 {object} models.Response "Voting window not active"
// @Failure 409 {object} models.Response "Vote already submitted"
// @Router /api/votes [post]
func (c *VotingController) submitVote(g *gin.Context) {
	var req models.SubmitVotePayload
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid request format"))
		return
	}

	ctx := g.Request.Context()
	eventID := g.GetInt(transport.ContextEventID)
	employeeID := g.GetInt(transport.ContextEmployeeID)

	event, err := c.eventsStorage.Get(ctx, eventID)
	if err != nil {
		logging.Log.Errorf("VOTE: event lookup failed for %d: %v", eventID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	// Clients that do not track a device identity still get a stable one
	// recorded for the audit trail.
	if req.DeviceID == "" {
		req.DeviceID = uuid.NewString()
	}

	vote, err := c.votesStorage.Submit(ctx, storage.SubmitVoteRequest{
		EventID:    eventID,
		ProgramID:  req.ProgramID,
		EmployeeID: employeeID,
		Scores:     req.Scores.ToScores(),
		Weights:    event.Weights(),
		IPAddress:  g.ClientIP(),
		UserAgent:  g.Request.UserAgent(),
		DeviceID:   req.DeviceID,
	})
	if err != nil {
		c.writeSubmitError(g, req.ProgramID, err)
		return
	}

	logging.Audit("vote_submit", employeeID, map[string]interface{}{
		"eventId":   eventID,
		"programId": req.ProgramID,
		"composite": vote.CompositeScore,
	})

	stats, err := c.statisticsStorage.GetByProgram(ctx, eventID, req.ProgramID)
	if err != nil {
		logging.Log.Warnf("VOTE: statistics read-back failed for program %d: %v", req.ProgramID, err)
	}

	result := &models.SubmitVoteResult{
		Vote:       models.TransformVoteFromStorage(vote),
		Statistics: stats,
	}
	if program, err := c.programsStorage.Get(ctx, req.ProgramID); err == nil {
		if next, err := c.programsStorage.GetNext(ctx, eventID, program.SeqNo); err == nil {
			resp := models.TransformProgramFromStorage(next, time.Now().UTC())
			result.NextProgram = &resp
		}
	}

	c.bus.Publish(notify.Message{
		Kind:    notify.KindVoteAccepted,
		EventID: eventID,
		Payload: gin.H{"programId": req.ProgramID, "statistics": stats},
	})

	g.JSON(http.StatusOK, models.OK("vote accepted", result))
}

// writeSubmitError maps the submission error taxonomy onto the envelope. A
// rejected window carries the remaining time so clients can show a countdown
// or a definitive "closed".
func (c *VotingController) writeSubmitError(g *gin.Context, programID int, err error) {
	switch {
	case errors.Is(err, voting.ErrScoreOutOfRange), errors.Is(err, voting.ErrInvalidWeights):
		g.JSON(http.StatusBadRequest, models.Fail(400, err.Error()))
	case errors.Is(err, voting.ErrVotingNotStarted),
		errors.Is(err, voting.ErrVotingWindowElapsed),
		errors.Is(err, voting.ErrVotingClosed):
		remaining := 0
		if program, perr := c.programsStorage.Get(g.Request.Context(), programID); perr == nil {
			remaining = program.RemainingVoteTime(time.Now().UTC())
		}
		g.JSON(http.StatusForbidden, models.FailWithData(403, err.Error(), gin.H{"remainingTime": remaining}))
	case errors.Is(err, voting.ErrDuplicateVote):
		g.JSON(http.StatusConflict, models.Fail(409, err.Error()))
	case errors.Is(err, storage.ErrNotFound):
		g.JSON(http.StatusNotFound, models.Fail(404, "program not found"))
	default:
		logging.Log.Errorf("VOTE: submit failed for program %d: %v", programID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "could not save vote"))
	}
}

// getMyVotes godoc
// @Summary My submitted votes
// @Description Returns the logged-in voter's votes for the current event
// @Tags voting
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/votes/mine [get]
func (c *VotingController) getMyVotes(g *gin.Context) {
	eventID := g.GetInt(transport.ContextEventID)
	employeeID := g.GetInt(transport.ContextEmployeeID)

	votes, err := c.votesStorage.GetByEmployee(g.Request.Context(), eventID, employeeID)
	if err != nil {
		logging.Log.Errorf("VOTE: my votes lookup failed for employee %d: %v", employeeID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	out := make([]models.VoteResponse, 0, len(votes))
	for _, v := range votes {
		out = append(out, models.TransformVoteFromStorage(v))
	}
	g.JSON(http.StatusOK, models.OK("", out))
}

// canVote godoc
// @Summary Check vote eligibility
// @Description Reports whether the voter can currently vote for the program and why not otherwise
// @Tags voting
// @Produce json
// @Param programId path int true "Program ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response "Program not found"
// @Router /api/votes/can-vote/{programId} [get]
func (c *VotingController) canVote(g *gin.Context) {
	programID, err := strconv.Atoi(g.Param("programId"))
	if err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid program id"))
		return
	}

	ctx := g.Request.Context()
	eventID := g.GetInt(transport.ContextEventID)
	employeeID := g.GetInt(transport.ContextEmployeeID)

	program, err := c.programsStorage.Get(ctx, programID)
	if err != nil || program.EventID != eventID {
		g.JSON(http.StatusNotFound, models.Fail(404, "program not found"))
		return
	}

	now := time.Now().UTC()
	resp := &models.CanVoteResponse{RemainingTime: program.RemainingVoteTime(now)}

	if existing, err := c.votesStorage.GetExisting(ctx, eventID, programID, employeeID); err == nil && existing != nil {
		resp.Reason = voting.ErrDuplicateVote.Error()
		g.JSON(http.StatusOK, models.OK("", resp))
		return
	}

	if err := voting.ActiveError(program.Status, program.VoteEndAt, now); err != nil {
		resp.Reason = err.Error()
		g.JSON(http.StatusOK, models.OK("", resp))
		return
	}

	resp.CanVote = true
	g.JSON(http.StatusOK, models.OK("", resp))
}

// getProgramStatistics godoc
// @Summary Program statistics
// @Description Returns the per-dimension aggregates and composite for one program
// @Tags statistics
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} models.Response
// @Router /api/statistics/programs/{id} [get]
func (c *VotingController) getProgramStatistics(g *gin.Context) {
	programID, err := strconv.Atoi(g.Param("id"))
	if err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid program id"))
		return
	}
	eventID := g.GetInt(transport.ContextEventID)

	stats, err := c.statisticsStorage.GetByProgram(g.Request.Context(), eventID, programID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, models.Fail(404, "program not found"))
			return
		}
		logging.Log.Errorf("STATS: lookup failed for program %d: %v", programID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	g.JSON(http.StatusOK, models.OK("", stats))
}

// getLeaderboard godoc
// @Summary Event leaderboard
// @Description Ranks programs by composite total or a single dimension
// @Tags statistics
// @Produce json
// @Param dimension query string false "Dimension name, omit for composite"
// @Param limit query int false "Max entries, default 10"
// @Success 200 {object} models.Response
// @Router /api/statistics/leaderboard [get]
func (c *VotingController) getLeaderboard(g *gin.Context) {
	eventID := g.GetInt(transport.ContextEventID)

	dimension := g.Query("dimension")
	if dimension != "" && dimension != "composite" && !voting.IsValidDimension(dimension) {
		g.JSON(http.StatusBadRequest, models.Fail(400, "unknown dimension"))
		return
	}

	limit := 10
	if raw := g.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			g.JSON(http.StatusBadRequest, models.Fail(400, "invalid limit"))
			return
		}
		limit = parsed
	}

	entries, err := c.statisticsStorage.Leaderboard(g.Request.Context(), eventID, dimension, limit)
	if err != nil {
		logging.Log.Errorf("STATS: leaderboard failed for event %d: %v", eventID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	g.JSON(http.StatusOK, models.OK("", entries))
}
