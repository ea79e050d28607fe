// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AccelByte/extend-core-ranked/pkg/envelope"
	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

const traceHeader = "X-Ab-TraceID"

type errorResponse struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

type rankedResponse struct {
	PlayerID string      `json:"playerId"`
	Rating   int         `json:"rating"`
	Pending  interface{} `json:"pending,omitempty"`
	Active   interface{} `json:"active,omitempty"`
}

// NewRouter exposes health, metrics, read only views of the ranked state and
// a command endpoint for bridges that do not speak NATS.
func NewRouter(d *Dispatcher, gatherer prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(), recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/v1")
	v1.GET("/leaderboard", func(c *gin.Context) {
		scope := requestScope(c, "server.GetLeaderboard")
		defer scope.Finish()

		n := d.options.LeaderboardSize
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				abortWithError(c, models.ErrMissingOption)
				return
			}
			n = parsed
		}
		top, err := d.ratings.Leaderboard(scope, n)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, top)
	})
	v1.GET("/ratings/:playerID", func(c *gin.Context) {
		scope := requestScope(c, "server.GetRating")
		defer scope.Finish()

		playerID := c.Param("playerID")
		r, err := d.ratings.Rating(scope, playerID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PlayerRating{PlayerID: playerID, Rating: r})
	})
	v1.GET("/ranked/:playerID", func(c *gin.Context) {
		scope := requestScope(c, "server.GetRanked")
		defer scope.Finish()

		playerID := c.Param("playerID")
		r, err := d.ratings.Rating(scope, playerID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		resp := rankedResponse{PlayerID: playerID, Rating: r}
		pending, active := d.matches.Lookup(playerID)
		if pending != nil {
			resp.Pending = pending
		}
		if active != nil {
			resp.Active = active
		}
		c.JSON(http.StatusOK, resp)
	})
	v1.GET("/tournaments", func(c *gin.Context) {
		c.JSON(http.StatusOK, d.tournaments.Tournaments())
	})
	v1.POST("/commands", func(c *gin.Context) {
		var cmd Command
		if err := c.ShouldBindJSON(&cmd); err != nil || (cmd.Name == "" && cmd.ButtonID == "") {
			abortWithError(c, models.ErrUnknownCommand)
			return
		}
		scope := requestScope(c, "server.PostCommand")
		if cmd.TraceID != "" {
			scope = envelope.NewRootScope(c.Request.Context(), "server.PostCommand", cmd.TraceID)
		}
		defer scope.Finish()

		if err := d.Handle(scope, cmd); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, Ack{OK: true})
	})

	return router
}

// requestScope prefers an explicit trace id header and otherwise continues a
// b3 or w3c trace propagated in the request headers.
func requestScope(c *gin.Context, name string) *envelope.Scope {
	if traceID := c.GetHeader(traceHeader); traceID != "" {
		return envelope.NewRootScope(c.Request.Context(), name, traceID)
	}
	ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
	return envelope.ChildScopeFromRemoteScope(ctx, name)
}

func statusOf(err error) int {
	switch models.ErrorKindOf(err) {
	case models.KindUserInput:
		return http.StatusBadRequest
	case models.KindStateConflict:
		return http.StatusConflict
	case models.KindCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusOf(err), errorResponse{
		ErrorCode:    models.ErrorCode(err),
		ErrorMessage: err.Error(),
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("http request")
			return
		}
		entry.Debug("http request")
	}
}

func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logrus.WithFields(logrus.Fields{
			"error":  recovered,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("panic recovered in http handler")
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
			ErrorCode:    models.ErrorCode(nil),
			ErrorMessage: "internal server error",
		})
	})
}

// HTTPServer runs the router until Shutdown.
type HTTPServer struct {
	srv *http.Server
}

func NewHTTPServer(address string, handler http.Handler) *HTTPServer {
	return &HTTPServer{srv: &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Serve blocks until the server stops. A graceful shutdown is not an error.
func (s *HTTPServer) Serve() error {
	logrus.WithField("address", s.srv.Addr).Info("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
