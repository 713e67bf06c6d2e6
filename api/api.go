package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civitech/hireengine-backend/account"
	"github.com/civitech/hireengine-backend/bike"
	"github.com/civitech/hireengine-backend/discount"
	"github.com/civitech/hireengine-backend/hire"
	"github.com/civitech/hireengine-backend/internal/auth0"
	"github.com/civitech/hireengine-backend/internal/middleware"
	"github.com/civitech/hireengine-backend/internal/o11y"
	"github.com/civitech/hireengine-backend/inventory"
	"github.com/civitech/hireengine-backend/station"
)

type API struct {
	r *gin.Engine

	br  *bike.Repository
	sr  *station.Repository
	ar  *account.Repository
	hr  *hire.Repository
	dr  *discount.Repository
	inv *inventory.Ledger
	mgr *hire.Manager

	auth0Client auth0.Client

	// top-ups at or above this are invoiced through Stripe
	invoiceThreshold float64
}

type Config struct {
	Auth0Domain string
	Audience    string

	MetricsUsername string
	MetricsPassword string

	InvoiceThreshold float64
}

func New(
	br *bike.Repository,
	sr *station.Repository,
	ar *account.Repository,
	hr *hire.Repository,
	dr *discount.Repository,
	inv *inventory.Ledger,
	mgr *hire.Manager,
	auth0Client auth0.Client,
	obs *o11y.Observability,
	cfg Config,
) *API {
	a := &API{
		r:                gin.New(),
		br:               br,
		sr:               sr,
		ar:               ar,
		hr:               hr,
		dr:               dr,
		inv:              inv,
		mgr:              mgr,
		auth0Client:      auth0Client,
		invoiceThreshold: cfg.InvoiceThreshold,
	}

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.Logging(obs.Logger))
	a.r.Use(middleware.Metrics(obs.Registry))
	hire.RegisterMetrics(obs.Registry)

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	metrics := a.r.Group("/metrics", gin.BasicAuth(gin.Accounts{
		cfg.MetricsUsername: cfg.MetricsPassword,
	}))
	metrics.GET("", gin.WrapH(promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})))

	a.r.GET("/stations", a.stationsHandler)
	a.r.GET("/stations/:id", a.stationHandler)
	a.r.GET("/stations/:id/count", a.stationCountHandler)
	a.r.GET("/bikes", a.bikesHandler)
	a.r.GET("/bikes/:label", a.bikeHandler)

	authed := a.r.Group("/", middleware.EnsureValidToken(cfg.Auth0Domain, cfg.Audience))
	{
		authed.GET("/account", a.accountHandler)
		authed.POST("/account/funds", a.addFundsHandler)
		authed.POST("/account/charges/pay", a.payChargesHandler)
		authed.POST("/account/sync", a.syncProfileHandler)

		authed.GET("/hires", a.hireHistoryHandler)
		authed.GET("/hires/current", a.currentHireHandler)
		authed.POST("/hires", a.startHireHandler)
		authed.POST("/hires/:hireId/return", a.returnHireHandler)
		authed.GET("/hires/:hireId/cost", a.previewCostHandler)

		ops := authed.Group("/ops", middleware.RequireOperator())
		{
			ops.POST("/moves", a.moveBikeHandler)
			ops.POST("/repairs", a.reportRepairHandler)
			ops.POST("/repairs/:bikeId/complete", a.completeRepairHandler)
			ops.POST("/discounts", a.createDiscountHandler)
		}

		reports := authed.Group("/reports", middleware.RequireManager())
		{
			reports.GET("/stations/:id/series", a.stationSeriesHandler)
		}
	}

	return a
}

func (a *API) Router() *gin.Engine {
	return a.r
}

type stationResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Lat              float64   `json:"latitude"`
	Lng              float64   `json:"longitude"`
	InitialBikeCount int       `json:"initialBikeCount"`
}

func toStationResponse(s station.Station) stationResponse {
	return stationResponse{
		ID:               s.ID,
		Name:             s.Name,
		Lat:              s.Location.P.X,
		Lng:              s.Location.P.Y,
		InitialBikeCount: s.InitialBikeCount,
	}
}
