package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civitech/hireengine-backend/account"
	"github.com/civitech/hireengine-backend/bike"
	"github.com/civitech/hireengine-backend/hire"
	"github.com/civitech/hireengine-backend/internal/middleware"
	"github.com/civitech/hireengine-backend/station"
)

// getAccount resolves the caller's account, creating one on first contact
// with the service.
func (a *API) getAccount(c *gin.Context) (*account.Account, bool) {
	auth0ID, ok := middleware.GetAuth0ID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"})
		return nil, false
	}

	acct, err := a.ar.GetByAuth0ID(c, auth0ID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			acct, err = a.ar.Create(c, auth0ID)
			if err != nil {
				middleware.GetLogger(c).ErrorContext(c, "failed to create account", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return nil, false
			}
			return acct, true
		}
		middleware.GetLogger(c).ErrorContext(c, "failed to get account", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return nil, false
	}
	return acct, true
}

type hireResponse struct {
	ID           uuid.UUID  `json:"id"`
	BikeID       *uuid.UUID `json:"bikeId,omitempty"`
	DateHired    time.Time  `json:"dateHired"`
	DateReturned *time.Time `json:"dateReturned,omitempty"`
	StartStation *uuid.UUID `json:"startStation,omitempty"`
	EndStation   *uuid.UUID `json:"endStation,omitempty"`
	Charges      *float64   `json:"charges,omitempty"`
}

func toHireResponse(h hire.Hire) hireResponse {
	hr := hireResponse{
		ID:           h.ID,
		BikeID:       h.BikeID,
		DateHired:    h.DateHired,
		StartStation: h.StartStation,
		EndStation:   h.EndStation,
	}
	if h.DateReturned.Valid {
		hr.DateReturned = &h.DateReturned.Time
	}
	if h.Charges.Valid {
		hr.Charges = &h.Charges.Float64
	}
	return hr
}

type startHireRequest struct {
	BikeLabel string `json:"bikeLabel" binding:"required"`
}

func (a *API) startHireHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req startHireRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acct, ok := a.getAccount(c)
	if !ok {
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

	h, err := a.mgr.Start(c, b.ID, acct.ID)
	if err != nil {
		switch {
		case errors.Is(err, hire.ErrBikeNotAvailable):
			c.JSON(http.StatusConflict, gin.H{"code": "BIKE_NOT_AVAILABLE", "message": "Bike is not available for hire"})
		case errors.Is(err, hire.ErrHireInProgress):
			c.JSON(http.StatusConflict, gin.H{"code": "HIRE_IN_PROGRESS", "message": "Return your current bike before hiring another"})
		case errors.Is(err, hire.ErrOutstandingCharges):
			c.JSON(http.StatusConflict, gin.H{"code": "OUTSTANDING_CHARGES", "message": "Pay your charges before hiring another bike"})
		default:
			logger.ErrorContext(c, "failed to start hire", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, toHireResponse(h))
}

type returnHireRequest struct {
	// Station accepts either the station's id or its display name, since
	// the app sends whichever the customer scanned at the dock.
	Station      string `json:"station" binding:"required"`
	DiscountCode string `json:"discountCode"`
}

// resolveStation turns an id-or-name into a station id.
func (a *API) resolveStation(c *gin.Context, idOrName string) (uuid.UUID, error) {
	if id, err := uuid.Parse(idOrName); err == nil {
		return id, nil
	}
	s, err := a.sr.GetStationByName(c, idOrName)
	if err != nil {
		return uuid.Nil, err
	}
	return s.ID, nil
}

func (a *API) returnHireHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	var req returnHireRequest
	if err := c.Bind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hireID, err := uuid.Parse(c.Param("hireId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ID", "message": "Invalid hire id"})
		return
	}
	stationID, err := a.resolveStation(c, req.Station)
	if err != nil {
		if errors.Is(err, station.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "STATION_NOT_FOUND", "message": "Station not found"})
			return
		}
		logger.ErrorContext(c, "failed to resolve station", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	acct, ok := a.getAccount(c)
	if !ok {
		return
	}

	h, err := a.hr.GetByID(c, hireID)
	if err != nil {
		if errors.Is(err, hire.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "HIRE_NOT_FOUND", "message": "Hire not found"})
			return
		}
		logger.ErrorContext(c, "failed to get hire", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if h.AccountID != acct.ID {
		c.JSON(http.StatusForbidden, gin.H{"code": "FORBIDDEN", "message": "Not your hire"})
		return
	}

	h, err = a.mgr.Return(c, hireID, stationID, req.DiscountCode)
	if err != nil {
		if errors.Is(err, hire.ErrAlreadyReturned) {
			c.JSON(http.StatusConflict, gin.H{"code": "ALREADY_RETURNED", "message": "Hire has already been returned"})
			return
		}
		logger.ErrorContext(c, "failed to return hire", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, toHireResponse(h))
}

type currentHireResponse struct {
	InProgress bool          `json:"inProgress"`
	Hire       *hireResponse `json:"hire,omitempty"`
}

func (a *API) currentHireHandler(c *gin.Context) {
	acct, ok := a.getAccount(c)
	if !ok {
		return
	}

	if acct.CurrentHireID == nil {
		c.JSON(http.StatusOK, currentHireResponse{InProgress: false})
		return
	}

	h, err := a.hr.GetByID(c, *acct.CurrentHireID)
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to get current hire", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := toHireResponse(h)
	c.JSON(http.StatusOK, currentHireResponse{InProgress: true, Hire: &resp})
}

func (a *API) hireHistoryHandler(c *gin.Context) {
	acct, ok := a.getAccount(c)
	if !ok {
		return
	}

	hires, err := a.hr.GetHistory(c, acct.ID)
	if err != nil {
		middleware.GetLogger(c).ErrorContext(c, "failed to get hire history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	responses := make([]hireResponse, 0, len(hires))
	for _, h := range hires {
		responses = append(responses, toHireResponse(h))
	}
	c.JSON(http.StatusOK, responses)
}

type previewCostResponse struct {
	Total float64 `json:"total"`
	Saved float64 `json:"saved"`
}

// previewCostHandler prices an in-progress hire as if returned now, so the
// customer can see the charge before committing.
func (a *API) previewCostHandler(c *gin.Context) {
	hireID, err := uuid.Parse(c.Param("hireId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "INVALID_ID", "message": "Invalid hire id"})
		return
	}

	total, saved, err := a.mgr.PreviewCost(c, hireID, c.Query("discountCode"))
	if err != nil {
		if errors.Is(err, hire.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "HIRE_NOT_FOUND", "message": "Hire not found"})
			return
		}
		middleware.GetLogger(c).ErrorContext(c, "failed to preview cost", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, previewCostResponse{Total: total, Saved: saved})
}
