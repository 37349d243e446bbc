// Package server exposes the HTTP API: archive upload, username scrape,
// report retrieval, checkout creation, and the payment webhook.
package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tweetlens/internal/archive"
	"tweetlens/internal/config"
	"tweetlens/internal/llm"
	"tweetlens/internal/mail"
	"tweetlens/internal/metrics"
	"tweetlens/internal/normalize"
	"tweetlens/internal/payment"
	"tweetlens/internal/pipeline"
	"tweetlens/internal/report"
	"tweetlens/internal/scrape"
	"tweetlens/internal/store"
)

const defaultMaxUploadBytes = 50 << 20

// Server wires the route handlers to their collaborators.
type Server struct {
	Cfg      config.Config
	Store    *store.DB
	Scraper  scrape.Client
	Payments payment.Client
	LLM      llm.Provider
	Mailer   mail.Sender
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	api := r.Group("/api")
	api.POST("/archive", s.uploadArchive)
	api.POST("/scrape", s.scrapeUser)
	api.GET("/report/:id", s.getReport)
	api.POST("/checkout", s.createCheckout)
	api.POST("/webhook/payment", s.paymentWebhook)
	return r
}

func (s *Server) uploadArchive(c *gin.Context) {
	metrics.ArchiveUploads.Inc()
	maxBytes := s.Cfg.Server.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}

	file, _, err := c.Request.FormFile("archive")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing archive file"})
		return
	}
	defer file.Close()
	text, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	records, err := archive.ParseArchive(string(text))
	if err != nil {
		metrics.ArchiveParseFailures.Inc()
		var malformed *archive.MalformedArchiveError
		if errors.As(err, &malformed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid archive file"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.processAndRespond(c, records, "archive", c.PostForm("timeframe"))
}

type scrapeRequest struct {
	Username  string `json:"username" binding:"required"`
	Timeframe string `json:"timeframe"`
	Limit     int    `json:"limit"`
}

func (s *Server) scrapeUser(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}
	metrics.ScrapeRequests.Inc()
	limit := req.Limit
	if limit <= 0 {
		limit = 200
	}
	records, err := s.Scraper.FetchUserTweets(c.Request.Context(), req.Username, limit)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("scrape failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "scrape provider unavailable"})
		return
	}
	s.processAndRespond(c, records, "scrape", req.Timeframe)
}

// processAndRespond runs the pipeline and stores a new unpaid session.
// Payment later unlocks the premium sections of the stored result.
func (s *Server) processAndRespond(c *gin.Context, records []normalize.RawRecord, source, timeframe string) {
	if timeframe == "" {
		timeframe = string(pipeline.TimeframeAll)
	}
	start := time.Now()
	result, err := pipeline.Process(records, pipeline.Timeframe(timeframe), false, pipeline.Config{
		FreeTierCap: s.Cfg.FreeTier.Cap,
	})
	metrics.ObserveProcessing(start)
	if err != nil {
		var invalid *pipeline.InvalidInputError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no records to process"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	id, err := s.Store.CreateSession(c.Request.Context(), source, timeframe, result)
	if err != nil {
		log.Error().Err(err).Msg("failed to store session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store session"})
		return
	}
	log.Info().Str("session", id).Str("source", source).
		Int("processed", result.ProcessedCount).Bool("limited", result.IsFreeTierLimited).
		Msg("session created")

	c.JSON(http.StatusCreated, gin.H{
		"sessionId":           id,
		"highlights":          report.Derive(result),
		"processedCount":      result.ProcessedCount,
		"rawCountInTimeframe": result.RawCountInTimeframe,
		"isFreeTierLimited":   result.IsFreeTierLimited,
		"diagnostics":         result.Diagnostics,
	})
}

func (s *Server) getReport(c *gin.Context) {
	session, err := s.Store.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"sessionId":         session.ID,
		"source":            session.Source,
		"timeframe":         session.Timeframe,
		"paid":              session.Paid,
		"highlights":        report.Derive(session.Result),
		"temporalData":      session.Result.Temporal,
		"isFreeTierLimited": session.Result.IsFreeTierLimited,
	}
	if session.Paid {
		resp["mediaItems"] = session.Result.MediaItems
		narrative, err := report.Narrative(c.Request.Context(), s.LLM, session.Result)
		if err != nil {
			log.Error().Err(err).Str("session", session.ID).Msg("narrative generation failed")
		} else if narrative != "" {
			resp["narrative"] = narrative
		}
	}
	c.JSON(http.StatusOK, resp)
}

type checkoutRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

func (s *Server) createCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}
	if _, err := s.Store.GetSession(c.Request.Context(), req.SessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	checkout, err := s.Payments.CreateCheckout(c.Request.Context(), req.SessionID,
		s.Cfg.Payment.SuccessURL, s.Cfg.Payment.CancelURL)
	if err != nil {
		log.Error().Err(err).Str("session", req.SessionID).Msg("checkout creation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "checkout provider unavailable"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"checkoutId": checkout.ID, "url": checkout.URL})
}

func (s *Server) paymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	event, err := payment.VerifyWebhook(body, c.GetHeader("X-Webhook-Signature"), s.Cfg.Payment.WebhookSecret)
	if err != nil {
		log.Warn().Err(err).Msg("webhook rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook"})
		return
	}
	if event.Type != "checkout.completed" || !event.Session.Paid {
		c.Status(http.StatusNoContent)
		return
	}
	sessionID := event.Session.Metadata["report_session"]
	if err := s.Store.MarkPaid(c.Request.Context(), sessionID, event.Session.CustomerEmail); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.PaidSessions.Inc()
	log.Info().Str("session", sessionID).Msg("session marked paid")

	if s.Mailer != nil && event.Session.CustomerEmail != "" {
		link := s.Cfg.Payment.SuccessURL
		if err := s.Mailer.Send(event.Session.CustomerEmail,
			"Your report is ready",
			"<p>Your full report is unlocked: <a href=\""+link+"\">view it here</a>.</p>",
			"Your full report is unlocked: "+link); err != nil {
			log.Error().Err(err).Msg("report email failed")
		}
	}
	c.Status(http.StatusNoContent)
}
