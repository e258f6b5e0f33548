package controllers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ctesting "github.com/pwbcr2502-crypto/galass/api/controllers/testing"
	"github.com/pwbcr2502-crypto/galass/notify"
	"github.com/pwbcr2502-crypto/galass/storage"
)

func TestSubmitVoteReturnsStatistics(t *testing.T) {
	env := setupTestServer(t)
	event := env.seedEvent(t, "GALA25")
	program := env.seedProgram(t, event.ID, 1)
	env.openWindow(t, program.ID)
	env.seedEmployee(t, "E1001")
	token := env.login(t, "GALA25", "E1001")

	messages, cancel := env.bus.Subscribe()
	defer cancel()

	res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
		"programId": program.ID,
		"scores":    fullScores(),
	}, authHeader(token))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	data := parseEnvelope(t, res)["data"].(map[string]interface{})
	vote := data["vote"].(map[string]interface{})
	assert.Equal(t, float64(program.ID), vote["programId"])
	assert.Equal(t, float64(21), vote["compositeScore"])

	stats := data["statistics"].(map[string]interface{})
	composite := stats["composite"].(map[string]interface{})
	assert.Equal(t, float64(21), composite["totalScore"])
	assert.Equal(t, float64(1), composite["voteCount"])

	msg := <-messages
	assert.Equal(t, notify.KindVoteAccepted, msg.Kind)
	assert.Equal(t, event.ID, msg.EventID)
}

func TestSubmitVoteRejectsDuplicate(t *testing.T) {
	env := setupTestServer(t)
	event := env.seedEvent(t, "GALA25")
	program := env.seedProgram(t, event.ID, 1)
	env.openWindow(t, program.ID)
	env.seedEmployee(t, "E1001")
	token := env.login(t, "GALA25", "E1001")

	payload := gin.H{"programId": program.ID, "scores": fullScores()}
	res := ctesting.PerformRequest(env.router, "POST", "/api/votes", payload, authHeader(token))
	require.Equal(t, http.StatusOK, res.Code)

	res = ctesting.PerformRequest(env.router, "POST", "/api/votes", payload, authHeader(token))
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, float64(409), parseEnvelope(t, res)["code"])
}

func TestSubmitVoteRejectsClosedWindow(t *testing.T) {
	env := setupTestServer(t)
	event := env.seedEvent(t, "GALA25")
	program := env.seedProgram(t, event.ID, 1)
	env.seedEmployee(t, "E1001")
	token := env.login(t, "GALA25", "E1001")

	res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
		"programId": program.ID,
		"scores":    fullScores(),
	}, authHeader(token))
	require.Equal(t, http.StatusForbidden, res.Code, res.Body.String())

	body := parseEnvelope(t, res)
	assert.Equal(t, float64(403), body["code"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["remainingTime"])
}

func TestSubmitVoteRejectsOutOfRangeScores(t *testing.T) {
	env := setupTestServer(t)
	event := env.seedEvent(t, "GALA25")
	program := env.seedProgram(t, event.ID, 1)
	env.openWindow(t, program.ID)
	env.seedEmployee(t, "E1001")
	token := env.login(t, "GALA25", "E1001")

	res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
		"programId": program.ID,
		"scores": gin.H{
			"stagePresence": 6,
			"performance":   4,
			"popularity":    3,
			"teamwork":      4,
			"creativity":    5,
		},
	}, authHeader(token))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestSubmitVoteRejectsForeignProgram(t *testing.T) {
	env := setupTestServer(t)
	env.seedEvent(t, "GALA25")
	other := env.seedEvent(t, "GALA26")
	program := env.seedProgram(t, other.ID, 1)
	env.openWindow(t, program.ID)
	env.seedEmployee(t, "E1001")
	token := env.login(t, "GALA25", "E1001")

	res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
		"programId": program.ID,
		"scores":    fullScores(),
	}, authHeader(token))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestCanVoteReflectsWindowAndDuplicate(t *testing.T) {
	env := setupTestServer(t)
	event := env.seedEvent(t, "GALA25")
	program := env.seedProgram(t, event.ID, 1)
	env.seedEmployee(t, "E1001")
	token := env.login(t, "GALA25", "E1001")

	path := fmt.Sprintf("/api/votes/can-vote/%d", program.ID)

	res := ctesting.PerformRequest(env.router, "GET", path, nil, authHeader(token))
	require.Equal(t, http.StatusOK, res.Code)
	data := parseEnvelope(t, res)["data"].(map[string]interface{})
	assert.Equal(t, false, data["canVote"])

	env.openWindow(t, program.ID)
	res = ctesting.PerformRequest(env.router, "GET", path, nil, authHeader(token))
	data = parseEnvelope(t, res)["data"].(map[string]interface{})
	assert.Equal(t, true, data["canVote"])
	assert.Greater(t, data["remainingTime"].(float64), float64(0))

	submit := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
		"programId": program.ID,
		"scores":    fullScores(),
	}, authHeader(token))
	require.Equal(t, http.StatusOK, submit.Code)

	res = ctesting.PerformRequest(env.router, "GET", path, nil, authHeader(token))
	data = parseEnvelope(t, res)["data"].(map[string]interface{})
	assert.Equal(t, false, data["canVote"])
	assert.NotEmpty(t, data["reason"])
}

func TestGetMyVotes(t *testing.T) {
	env := setupTestServer(t)
	event := env.seedEvent(t, "GALA25")
	first := env.seedProgram(t, event.ID, 1)
	second := env.seedProgram(t, event.ID, 2)
	env.seedEmployee(t, "E1001")
	token := env.login(t, "GALA25", "E1001")

	for _, p := range []int{first.ID, second.ID} {
		env.openWindow(t, p)
		res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
			"programId": p,
			"scores":    fullScores(),
		}, authHeader(token))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	}

	res := ctesting.PerformRequest(env.router, "GET", "/api/votes/mine", nil, authHeader(token))
	require.Equal(t, http.StatusOK, res.Code)
	votes := parseEnvelope(t, res)["data"].([]interface{})
	assert.Len(t, votes, 2)
}

func TestLeaderboardRanksByDimension(t *testing.T) {
	env := setupTestServer(t)
	event := env.seedEvent(t, "GALA25")
	first := env.seedProgram(t, event.ID, 1)
	second := env.seedProgram(t, event.ID, 2)
	env.seedEmployee(t, "E1001")
	env.seedEmployee(t, "E1002")
	tokenA := env.login(t, "GALA25", "E1001")
	tokenB := env.login(t, "GALA25", "E1002")

	env.openWindow(t, first.ID)
	for _, token := range []string{tokenA, tokenB} {
		res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
			"programId": first.ID,
			"scores":    fullScores(),
		}, authHeader(token))
		require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	}
	env.openWindow(t, second.ID)
	res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
		"programId": second.ID,
		"scores":    fullScores(),
	}, authHeader(tokenA))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	res = ctesting.PerformRequest(env.router, "GET", "/api/statistics/leaderboard", nil, authHeader(tokenA))
	require.Equal(t, http.StatusOK, res.Code)
	entries := parseEnvelope(t, res)["data"].([]interface{})
	require.Len(t, entries, 2)
	top := entries[0].(map[string]interface{})
	assert.Equal(t, float64(first.ID), top["programId"])

	res = ctesting.PerformRequest(env.router, "GET", "/api/statistics/leaderboard?dimension=popularity", nil, authHeader(tokenA))
	require.Equal(t, http.StatusOK, res.Code)

	// Asking for composite by name yields the same ranking as the default.
	res = ctesting.PerformRequest(env.router, "GET", "/api/statistics/leaderboard?dimension=composite", nil, authHeader(tokenA))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	entries = parseEnvelope(t, res)["data"].([]interface{})
	require.Len(t, entries, 2)
	assert.Equal(t, float64(first.ID), entries[0].(map[string]interface{})["programId"])

	res = ctesting.PerformRequest(env.router, "GET", "/api/statistics/leaderboard?dimension=bogus", nil, authHeader(tokenA))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestProgramStatisticsEndpoint(t *testing.T) {
	env := setupTestServer(t)
	event := env.seedEvent(t, "GALA25")
	program := env.seedProgram(t, event.ID, 1)
	env.openWindow(t, program.ID)
	env.seedEmployee(t, "E1001")
	token := env.login(t, "GALA25", "E1001")

	res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
		"programId": program.ID,
		"scores":    fullScores(),
	}, authHeader(token))
	require.Equal(t, http.StatusOK, res.Code)

	res = ctesting.PerformRequest(env.router, "GET", fmt.Sprintf("/api/statistics/programs/%d", program.ID), nil, authHeader(token))
	require.Equal(t, http.StatusOK, res.Code)

	data := parseEnvelope(t, res)["data"].(map[string]interface{})
	dimensions := data["dimensions"].(map[string]interface{})
	require.Len(t, dimensions, 5)
	popularity := dimensions["popularity"].(map[string]interface{})
	assert.Equal(t, float64(3), popularity["totalStars"])
	assert.Equal(t, float64(1), popularity["voteCount"])
}

func TestVoteRoutesRequireAuth(t *testing.T) {
	env := setupTestServer(t)

	res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{"programId": 1, "scores": fullScores()}, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = ctesting.PerformRequest(env.router, "GET", "/api/votes/mine", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestSubmitVoteGraceWindow(t *testing.T) {
	env := setupTestServer(t)
	event := env.seedEvent(t, "GALA25")
	program := env.seedProgram(t, event.ID, 1)
	env.openWindow(t, program.ID)
	env.seedEmployee(t, "E1001")
	token := env.login(t, "GALA25", "E1001")

	// Force the window end into the recent past, still inside the grace band.
	endAt := time.Now().UTC().Add(-30 * time.Second)
	require.NoError(t, env.db.WithContext(context.Background()).
		Model(&storage.Program{}).Where("id = ?", program.ID).
		Update("vote_end_at", endAt).Error)

	res := ctesting.PerformRequest(env.router, "POST", "/api/votes", gin.H{
		"programId": program.ID,
		"scores":    fullScores(),
	}, authHeader(token))
	assert.Equal(t, http.StatusOK, res.Code, res.Body.String())
}
