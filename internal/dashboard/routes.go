package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/parkyard/internal/journal"
	"github.com/zulandar/parkyard/internal/parking"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, opts StartOpts) {
	svc := opts.Service

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/system", handleSystem(svc))
	api.GET("/zones", handleZones(svc))
	api.GET("/zones/:id", handleZone(svc))
	api.GET("/requests", handleRequestList(svc))
	api.GET("/requests/:id", handleRequestDetail(svc))
	api.GET("/requests/:id/events", handleRequestEvents(opts.Journal))
	api.POST("/requests", handlePark(svc))
	api.POST("/requests/:id/submit", handleSubmit(svc))
	api.POST("/requests/:id/arrive", handleTransition(svc.Arrive))
	api.POST("/requests/:id/depart", handleTransition(svc.Depart))
	api.POST("/requests/:id/cancel", handleTransition(svc.Cancel))
	api.GET("/ledger", handleLedger(svc))
	api.POST("/rollback", handleRollback(svc))
	api.GET("/analytics", handleAnalytics(svc))
	api.GET("/reports/latest", handleLatestReport(opts.Journal))
	api.GET("/events", handleSSE(opts.Journal, opts.PollInterval, opts.HeartbeatInterval))

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
}

// statusFor maps a parking error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrNoSlot):
		return http.StatusConflict
	case errors.Is(err, parking.ErrRequestNotFound), errors.Is(err, parking.ErrZoneNotFound):
		return http.StatusNotFound
	case errors.Is(err, parking.ErrInvalidState),
		errors.Is(err, parking.ErrInvalidTransition),
		errors.Is(err, parking.ErrInsufficientHistory):
		return http.StatusConflict
	case errors.Is(err, parking.ErrInvalidCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func handleSystem(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Snapshot())
	}
}

func handleZones(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Snapshot().Zones)
	}
}

func handleZone(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		z, err := svc.Zone(c.Param("id"))
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, z)
	}
}

func handleRequestList(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var state parking.State
		if raw := c.Query("state"); raw != "" {
			st, err := parking.ParseState(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			state = st
		}
		reqs := svc.Requests(state)
		if reqs == nil {
			reqs = []parking.Request{}
		}
		c.JSON(http.StatusOK, reqs)
	}
}

func handleRequestDetail(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := svc.Request(c.Param("id"))
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

func handleRequestEvents(j *journal.Journal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if j == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
			return
		}
		rows, err := j.ForRequest(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out := make([]streamEvent, len(rows))
		for i, r := range rows {
			out[i] = toStreamEvent(r)
		}
		c.JSON(http.StatusOK, out)
	}
}

type parkBody struct {
	VehicleID string `json:"vehicle_id" binding:"required"`
	ZoneID    string `json:"zone_id" binding:"required"`
}

// allocationResponse pairs a request with its assignment when it has one.
type allocationResponse struct {
	Request    parking.Request     `json:"request"`
	Assignment *parking.Assignment `json:"assignment,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func handlePark(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body parkBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req, a, err := svc.Park(body.VehicleID, body.ZoneID)
		if err != nil {
			c.JSON(statusFor(err), allocationResponse{Request: req, Error: err.Error()})
			return
		}
		c.JSON(http.StatusCreated, allocationResponse{Request: req, Assignment: &a})
	}
}

func handleSubmit(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, a, err := svc.Submit(c.Param("id"))
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, allocationResponse{Request: req, Assignment: &a})
	}
}

func handleTransition(op func(string) (parking.Request, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := op(c.Param("id"))
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, req)
	}
}

func handleLedger(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs := svc.Ledger()
		if recs == nil {
			recs = []parking.Record{}
		}
		c.JSON(http.StatusOK, recs)
	}
}

type rollbackBody struct {
	Count int `json:"count"`
}

func handleRollback(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := rollbackBody{Count: 1}
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		ids, err := svc.Rollback(body.Count)
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"rolled_back": ids})
	}
}

func handleAnalytics(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		export := svc.Analytics()
		if c.Query("format") == "text" {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Status(http.StatusOK)
			if err := export.WriteReport(c.Writer); err != nil {
				c.Error(err)
			}
			return
		}
		c.JSON(http.StatusOK, export)
	}
}

func handleLatestReport(j *journal.Journal) gin.HandlerFunc {
	return func(c *gin.Context) {
		if j == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
			return
		}
		rep, err := j.LatestReport()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if rep == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no report taken yet"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":                    rep.ID,
			"taken_at":              rep.TakenAt,
			"total_requests":        rep.TotalRequests,
			"completed":             rep.Completed,
			"cancelled":             rep.Cancelled,
			"active":                rep.Active,
			"occupied_slots":        rep.OccupiedSlots,
			"total_slots":           rep.TotalSlots,
			"cross_zone":            rep.CrossZoneCount,
			"average_duration_secs": rep.AverageDuration,
		})
	}
}
