package http

import (
	"errors"
	"net/http"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/tempvoice/internal/api/http/converter"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/service"
)

type GuildController struct {
	rooms   service.RoomInteractor
	setups  service.SetupInteractor
	sweeper service.SweepInteractor
}

func NewGuildController(rooms service.RoomInteractor, setups service.SetupInteractor, sweeper service.SweepInteractor) *GuildController {
	return &GuildController{
		rooms:   rooms,
		setups:  setups,
		sweeper: sweeper,
	}
}

func guildID(ctx *gin.Context) (string, bool) {
	id := ctx.Param("guildID")
	if _, err := snowflake.Parse(id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid guild id"})
		return "", false
	}
	return id, true
}

func errorStatus(err error) int {
	if errors.Is(err, domain.ErrPlatformUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// GetSetup validates the guild's setup. A broken setup is removed as a side
// effect, the same as when a member uses the panel.
func (c *GuildController) GetSetup(ctx *gin.Context) {
	id, ok := guildID(ctx)
	if !ok {
		return
	}

	status, err := c.setups.Validate(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"setup": converter.SetupStatusToApi(status)})
}

func (c *GuildController) ListRooms(ctx *gin.Context) {
	id, ok := guildID(ctx)
	if !ok {
		return
	}

	rooms, err := c.rooms.List(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": converter.RoomsToApi(rooms)})
}

func (c *GuildController) Sweep(ctx *gin.Context) {
	id, ok := guildID(ctx)
	if !ok {
		return
	}

	report, err := c.sweeper.Sweep(ctx.Request.Context(), id)
	if err != nil {
		ctx.JSON(errorStatus(err), gin.H{"error": err.Error(), "report": report})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"report": report})
}
