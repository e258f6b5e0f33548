package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pwbcr2502-crypto/galass/api/models"
	"github.com/pwbcr2502-crypto/galass/api/transport"
	"github.com/pwbcr2502-crypto/galass/auth"
	"github.com/pwbcr2502-crypto/galass/logging"
	"github.com/pwbcr2502-crypto/galass/storage"
)

type ProgramController struct {
	programsStorage   storage.ProgramStorage
	votesStorage      storage.VoteStorage
	statisticsStorage storage.StatisticStorage
	sessionsStorage   storage.SessionStorage
	issuer            *auth.TokenIssuer
}

func NewProgramController(programStorage storage.ProgramStorage, voteStorage storage.VoteStorage, statisticStorage storage.StatisticStorage, sessionStorage storage.SessionStorage, issuer *auth.TokenIssuer) *ProgramController {
	return &ProgramController{
		programsStorage:   programStorage,
		votesStorage:      voteStorage,
		statisticsStorage: statisticStorage,
		sessionsStorage:   sessionStorage,
		issuer:            issuer,
	}
}

func (c *ProgramController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/programs")
	group.Use(transport.AuthMiddleware(c.issuer, c.sessionsStorage))

	group.GET("", c.listPrograms)
	group.GET("/current", c.getCurrentProgram)
	group.GET("/:id", c.getProgram)
	group.GET("/:id/next", c.getNextProgram)
}

// listPrograms godoc
// @Summary List event programs
// @Description Returns all programs of the voter's event in running order
// @Tags programs
// @Produce json
// @Success 200 {object} models.Response
// @Failure 401 {object} models.Response "Missing or invalid token"
// @Router /api/programs [get]
func (c *ProgramController) listPrograms(g *gin.Context) {
	eventID := g.GetInt(transport.ContextEventID)
	employeeID := g.GetInt(transport.ContextEmployeeID)

	programs, err := c.programsStorage.GetByEvent(g.Request.Context(), eventID)
	if err != nil {
		logging.Log.Errorf("PROGRAM: list failed for event %d: %v", eventID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	votes, err := c.votesStorage.GetByEmployee(g.Request.Context(), eventID, employeeID)
	if err != nil {
		logging.Log.Errorf("PROGRAM: voted lookup failed for employee %d: %v", employeeID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}
	voted := make(map[int]bool, len(votes))
	for _, v := range votes {
		voted[v.ProgramID] = true
	}

	now := time.Now().UTC()
	out := make([]*models.ProgramWithStatistics, 0, len(programs))
	for _, p := range programs {
		out = append(out, &models.ProgramWithStatistics{
			ProgramResponse: models.TransformProgramFromStorage(p, now),
			HasVoted:        voted[p.ID],
		})
	}

	g.JSON(http.StatusOK, models.OK("", out))
}

// getProgram godoc
// @Summary Get one program
// @Description Returns a program with its live statistics
// @Tags programs
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response "Program not found"
// @Router /api/programs/{id} [get]
func (c *ProgramController) getProgram(g *gin.Context) {
	program, ok := c.loadEventProgram(g)
	if !ok {
		return
	}
	eventID := g.GetInt(transport.ContextEventID)
	employeeID := g.GetInt(transport.ContextEmployeeID)

	stats, err := c.statisticsStorage.GetByProgram(g.Request.Context(), eventID, program.ID)
	if err != nil {
		logging.Log.Errorf("PROGRAM: statistics lookup failed for %d: %v", program.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	existing, err := c.votesStorage.GetExisting(g.Request.Context(), eventID, program.ID, employeeID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.Log.Errorf("PROGRAM: vote lookup failed for %d: %v", program.ID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	g.JSON(http.StatusOK, models.OK("", &models.ProgramWithStatistics{
		ProgramResponse: models.TransformProgramFromStorage(program, time.Now().UTC()),
		Statistics:      stats,
		HasVoted:        existing != nil,
	}))
}

// getCurrentProgram godoc
// @Summary Current voting program
// @Description Returns the program whose voting window is open, or the next one up when no window is open
// @Tags programs
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/programs/current [get]
func (c *ProgramController) getCurrentProgram(g *gin.Context) {
	ctx := g.Request.Context()
	eventID := g.GetInt(transport.ContextEventID)

	program, err := c.programsStorage.GetCurrentVoting(ctx, eventID)
	if err == nil {
		resp := models.TransformProgramFromStorage(program, time.Now().UTC())
		g.JSON(http.StatusOK, models.OK("", &resp))
		return
	}
	if !errors.Is(err, storage.ErrNotFound) {
		logging.Log.Errorf("PROGRAM: current lookup failed for event %d: %v", eventID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	// No window open. Fall back to the next pending program after the last
	// closed one, so big screens can show what is up next.
	lastSeq, err := c.programsStorage.GetLastClosedSeqNo(ctx, eventID)
	if err != nil {
		logging.Log.Errorf("PROGRAM: last closed lookup failed for event %d: %v", eventID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}
	next, err := c.programsStorage.GetNext(ctx, eventID, lastSeq)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusOK, models.OK("no voting in progress", nil))
			return
		}
		logging.Log.Errorf("PROGRAM: upcoming lookup failed for event %d: %v", eventID, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	resp := models.TransformProgramFromStorage(next, time.Now().UTC())
	g.JSON(http.StatusOK, models.OK("no voting in progress", &resp))
}

// getNextProgram godoc
// @Summary Next pending program
// @Description Returns the next not-yet-voted program after the given one
// @Tags programs
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.Response "Program not found"
// @Router /api/programs/{id}/next [get]
func (c *ProgramController) getNextProgram(g *gin.Context) {
	program, ok := c.loadEventProgram(g)
	if !ok {
		return
	}
	eventID := g.GetInt(transport.ContextEventID)

	next, err := c.programsStorage.GetNext(g.Request.Context(), eventID, program.SeqNo)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusOK, models.OK("no more programs", nil))
			return
		}
		logging.Log.Errorf("PROGRAM: next lookup failed after seq %d: %v", program.SeqNo, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return
	}

	resp := models.TransformProgramFromStorage(next, time.Now().UTC())
	g.JSON(http.StatusOK, models.OK("", &resp))
}

// loadEventProgram resolves the :id parameter and enforces that the program
// belongs to the voter's event.
func (c *ProgramController) loadEventProgram(g *gin.Context) (*storage.Program, bool) {
	id, err := strconv.Atoi(g.Param("id"))
	if err != nil {
		g.JSON(http.StatusBadRequest, models.Fail(400, "invalid program id"))
		return nil, false
	}

	program, err := c.programsStorage.Get(g.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.JSON(http.StatusNotFound, models.Fail(404, "program not found"))
			return nil, false
		}
		logging.Log.Errorf("PROGRAM: lookup failed for %d: %v", id, err)
		g.JSON(http.StatusInternalServerError, models.Fail(500, "internal error"))
		return nil, false
	}

	if program.EventID != g.GetInt(transport.ContextEventID) {
		g.JSON(http.StatusNotFound, models.Fail(404, "program not found"))
		return nil, false
	}

	return program, true
}
