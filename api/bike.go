package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civitech/hireengine-backend/bike"
	"github.com/civitech/hireengine-backend/internal/middleware"
)

type bikeResponse struct {
	ID          uuid.UUID   `json:"id"`
	Label       string      `json:"label"`
	Status      bike.Status `json:"status"`
	StationID   *uuid.UUID  `json:"stationId,omitempty"`
	StationName string      `json:"stationName,omitempty"`
	LastHired   *time.Time  `json:"lastHired,omitempty"`
}

func toBikeResponse(b bike.Bike) bikeResponse {
	br := bikeResponse{
		ID:        b.ID,
		Label:     b.Label,
		Status:    b.Status,
		StationID: b.StationID,
	}
	if b.StationName != nil {
		br.StationName = *b.StationName
	}
	if b.LastHired.Valid {
		br.LastHired = &b.LastHired.Time
	}
	return br
}

func (a *API) bikesHandler(c *gin.Context) {
	bikes, err := a.br.GetBikes(c)
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to list bikes", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]bikeResponse, 0, len(bikes))
	for _, b := range bikes {
		responses = append(responses, toBikeResponse(b))
	}
	c.JSON(http.StatusOK, responses)
}

func (a *API) bikeHandler(c *gin.Context) {
	b, err := a.br.GetBike(c, c.Param("label"))
	if err != nil {
		if errors.Is(err, bike.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "BIKE_NOT_FOUND", "message": "Bike not found"})
			return
		}
		middleware.GetLogger(c).ErrorContext(c, "failed to get bike", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toBikeResponse(b))
}
