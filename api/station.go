package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civitech/hireengine-backend/internal/middleware"
	"github.com/civitech/hireengine-backend/station"
)

func (a *API) stationsHandler(c *gin.Context) {
	stations, err := a.sr.GetStations(c)
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to list stations", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]stationResponse, 0, len(stations))
	for _, s := range stations {
		responses = append(responses, toStationResponse(s))
	}
	c.JSON(http.StatusOK, responses)
}

func (a *API) stationHandler(c *gin.Context) {
	s, err := a.sr.GetStation(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, station.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "STATION_NOT_FOUND", "message": "Station not found"})
			return
		}
		middleware.GetLogger(c).ErrorContext(c, "failed to get station", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toStationResponse(s))
}

type stationCountResponse struct {
	StationID uuid.UUID `json:"stationId"`
	Count     int       `json:"count"`
	AsOf      time.Time `json:"asOf"`
}

// stationCountHandler answers "how many bikes were at this station at time
// t", defaulting t to now.
func (a *API) stationCountHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ID", "message": "Invalid station id"})
		return
	}

	at := time.Now()
	if atStr := c.Query("at"); atStr != "" {
		at, err = time.Parse(time.RFC3339, atStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid 'at' timestamp"})
			return
		}
	}

	count, err := a.inv.CountAsOf(c, id, at)
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to get station count", "stationId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, stationCountResponse{StationID: id, Count: count, AsOf: at})
}

type seriesPointResponse struct {
	Count      int       `json:"count"`
	RecordedAt time.Time `json:"recordedAt"`
}

func (a *API) stationSeriesHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ID", "message": "Invalid station id"})
		return
	}

	from, to := time.Time{}, time.Now()
	if fromStr := c.Query("from"); fromStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid 'from' timestamp"})
			return
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid 'to' timestamp"})
			return
		}
	}

	events, err := a.inv.Series(c, id, from, to)
	if err != nil {
		logger.ErrorContext(c, "failed to get station series", "stationId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	points := make([]seriesPointResponse, 0, len(events))
	for _, e := range events {
		points = append(points, seriesPointResponse{Count: e.Count, RecordedAt: e.RecordedAt})
	}
	c.JSON(http.StatusOK, points)
}
