package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civitech/hireengine-backend/bike"
	"github.com/civitech/hireengine-backend/discount"
	"github.com/civitech/hireengine-backend/hire"
	"github.com/civitech/hireengine-backend/internal/middleware"
	"github.com/civitech/hireengine-backend/station"
)

type moveBikeRequest struct {
	FromStationID string `json:"fromStationId" binding:"required"`
	ToStationID   string `json:"toStationId" binding:"required"`
}

func (a *API) moveBikeHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req moveBikeRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, err := uuid.Parse(req.FromStationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ID", "message": "Invalid from-station id"})
		return
	}
	to, err := uuid.Parse(req.ToStationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ID", "message": "Invalid to-station id"})
		return
	}

	b, err := a.mgr.Move(c, from, to)
	if err != nil {
		switch {
		case errors.Is(err, hire.ErrSameStation):
			c.JSON(http.StatusBadRequest, gin.H{"code": "SAME_STATION", "message": "Cannot move a bike to the station it is already at"})
		case errors.Is(err, hire.ErrNoBikesAtStation):
			c.JSON(http.StatusConflict, gin.H{"code": "NO_BIKES_AT_STATION", "message": "Station has no bikes available to move"})
		case errors.Is(err, station.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": "STATION_NOT_FOUND", "message": "Station not found"})
		default:
			logger.ErrorContext(c, "failed to move bike", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, toBikeResponse(b))
}

type repairRequest struct {
	BikeLabel string `json:"bikeLabel" binding:"required"`
}

func (a *API) reportRepairHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req repairRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := a.br.GetBike(c, req.BikeLabel)
	if err != nil {
		if errors.Is(err, bike.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "BIKE_NOT_FOUND", "message": "Bike not found"})
			return
		}
		logger.ErrorContext(c, "failed to get bike", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := a.mgr.ReportForRepair(c, b.ID); err != nil {
		if errors.Is(err, hire.ErrAlreadyInRepair) {
			c.JSON(http.StatusConflict, gin.H{"code": "ALREADY_IN_REPAIR", "message": "Bike is already being repaired"})
			return
		}
		logger.ErrorContext(c, "failed to report bike for repair", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type completeRepairResponse struct {
	BikeID uuid.UUID `json:"bikeId"`
	Cost   float64   `json:"cost"`
}

func (a *API) completeRepairHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	bikeID, err := uuid.Parse(c.Param("bikeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ID", "message": "Invalid bike id"})
		return
	}

	cost, err := a.mgr.CompleteRepair(c, bikeID)
	if err != nil {
		switch {
		case errors.Is(err, hire.ErrNotInRepair):
			c.JSON(http.StatusConflict, gin.H{"code": "NOT_IN_REPAIR", "message": "Bike is not being repaired"})
		case errors.Is(err, bike.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": "BIKE_NOT_FOUND", "message": "Bike not found"})
		default:
			logger.ErrorContext(c, "failed to complete repair", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, completeRepairResponse{BikeID: bikeID, Cost: cost})
}

type createDiscountRequest struct {
	Code     string  `json:"code" binding:"required"`
	DateFrom string  `json:"dateFrom" binding:"required"`
	DateTo   string  `json:"dateTo" binding:"required"`
	Amount   float64 `json:"amount" binding:"required"`
}

func (a *API) createDiscountHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req createDiscountRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, err := time.Parse(time.DateOnly, req.DateFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid dateFrom"})
		return
	}
	to, err := time.Parse(time.DateOnly, req.DateTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_DATE", "message": "Invalid dateTo"})
		return
	}

	d := discount.Discount{
		Code:     req.Code,
		DateFrom: from,
		DateTo:   to,
		Amount:   req.Amount,
	}
	if err := a.dr.Create(c, &d); err != nil {
		logger.ErrorContext(c, "failed to create discount", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": d.ID, "code": d.Code})
}
