package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Zeeyeah/subsurfempire/domain"
)

// Handler exposes the session operations over HTTP/JSON.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the game routes on a router group.
func (h *Handler) Register(r *gin.RouterGroup) {
	r.POST("/game/create", h.Create)
	r.POST("/game/join", h.Join)
	r.POST("/game/update-player", h.UpdatePlayer)
	r.POST("/game/update-direction", h.UpdateDirection)
	r.POST("/game/update-trail", h.UpdateTrail)
	r.POST("/game/claim-territory", h.ClaimTerritory)
	r.POST("/game/leave", h.Leave)
	r.GET("/game/state/:gameId", h.State)
	r.GET("/game/coverage/:gameId", h.Coverage)
	r.GET("/username/:username", h.Username)
	r.POST("/username", h.SetUsername)
}

// RegisterDebug mounts the debug routes. Only wired when debug mode is on.
func (h *Handler) RegisterDebug(r *gin.RouterGroup) {
	r.GET("/debug/state", h.DebugState)
	r.POST("/debug/reset", h.Reset)
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound), errors.Is(err, domain.ErrPlayerNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGameFull), errors.Is(err, domain.ErrInvalidUsername):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) Create(c *gin.Context) {
	state, err := h.svc.CreateOrGetWaiting(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gameId": state.GameID, "gameState": state})
}

type joinRequest struct {
	Username  string        `json:"username" binding:"required"`
	Subreddit string        `json:"subreddit"`
	Position  *domain.Point `json:"position"`
	Direction *float64      `json:"direction"`
}

func (h *Handler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	playerID, state, err := h.svc.Join(c.Request.Context(), JoinParams{
		Username:  req.Username,
		Subreddit: req.Subreddit,
		Position:  req.Position,
		Direction: req.Direction,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"playerId":  playerID,
		"gameId":    state.GameID,
		"gameState": state,
	})
}

type updatePlayerRequest struct {
	GameID           string       `json:"gameId" binding:"required"`
	PlayerID         string       `json:"playerId" binding:"required"`
	Position         domain.Point `json:"position"`
	Direction        float64      `json:"direction"`
	IsInOwnTerritory bool         `json:"isInOwnTerritory"`
}

func (h *Handler) UpdatePlayer(c *gin.Context) {
	var req updatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.svc.UpdatePlayer(c.Request.Context(), req.GameID, req.PlayerID, req.Position, req.Direction, req.IsInOwnTerritory)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type updateDirectionRequest struct {
	GameID    string       `json:"gameId" binding:"required"`
	PlayerID  string       `json:"playerId" binding:"required"`
	Direction float64      `json:"direction"`
	Position  domain.Point `json:"position"`
}

func (h *Handler) UpdateDirection(c *gin.Context) {
	var req updateDirectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.svc.UpdateDirection(c.Request.Context(), req.GameID, req.PlayerID, req.Direction, req.Position)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type updateTrailRequest struct {
	GameID      string         `json:"gameId" binding:"required"`
	PlayerID    string         `json:"playerId" binding:"required"`
	TrailPoints []domain.Point `json:"trailPoints"`
}

func (h *Handler) UpdateTrail(c *gin.Context) {
	var req updateTrailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.svc.UpdateTrail(c.Request.Context(), req.GameID, req.PlayerID, req.TrailPoints)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type claimTerritoryRequest struct {
	GameID   string      `json:"gameId" binding:"required"`
	PlayerID string      `json:"playerId" binding:"required"`
	Area     domain.Area `json:"occupiedArea" binding:"required"`
}

func (h *Handler) ClaimTerritory(c *gin.Context) {
	var req claimTerritoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	err := h.svc.ClaimTerritory(c.Request.Context(), req.GameID, req.PlayerID, req.Area)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type leaveRequest struct {
	GameID   string `json:"gameId" binding:"required"`
	PlayerID string `json:"playerId" binding:"required"`
}

func (h *Handler) Leave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.svc.Leave(c.Request.Context(), req.GameID, req.PlayerID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"playersRemaining": res.PlayersRemaining,
		"gameStatus":       res.Status,
	})
}

func (h *Handler) State(c *gin.Context) {
	state, err := h.svc.State(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gameState": state})
}

func (h *Handler) Coverage(c *gin.Context) {
	rows, err := h.svc.Coverage(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coverage": rows})
}

func (h *Handler) Username(c *gin.Context) {
	ok, err := h.svc.Username(c.Request.Context(), c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": c.Param("username"), "exists": ok})
}

type setUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *Handler) SetUsername(c *gin.Context) {
	var req setUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.svc.SetUsername(c.Request.Context(), req.Username); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DebugState(c *gin.Context) {
	dump, err := h.svc.DebugState(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dump)
}

func (h *Handler) Reset(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
