// Package server exposes realized gain computations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/etnz/realized"
	"github.com/etnz/realized/date"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server computes reports on request from an immutable baseline and
// transaction history. Nothing is cached between requests.
type Server struct {
	baseline realized.Baseline
	txs      []realized.Transaction
	policy   realized.Policy
	log      *slog.Logger
	metrics  *Metrics
}

// New returns a server over baseline and txs, sorted by date. policy is the
// default policy, overridden by the policy query parameter.
func New(baseline realized.Baseline, txs []realized.Transaction, policy realized.Policy, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{baseline: baseline, txs: txs, policy: policy, log: log, metrics: NewMetrics()}
}

// Handler returns the gin router serving the API.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/metrics", s.getMetrics)
	api.GET("/metrics/:date/symbols", s.getSymbols)
	return r
}

// ListenAndServe serves the API on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "duration", time.Since(start))
}

// query is the computation requested by the query parameters.
type query struct {
	r    date.Range
	mode string
	opts realized.Options
}

func (s *Server) parseQuery(c *gin.Context) (q query, err error) {
	q.r = realized.DefaultRange(s.baseline.Date, s.txs)
	if v := c.Query("start"); v != "" {
		if q.r.From, err = date.Parse(v); err != nil {
			return q, fmt.Errorf("start: %w", err)
		}
	}
	if v := c.Query("end"); v != "" {
		if q.r.To, err = date.Parse(v); err != nil {
			return q, fmt.Errorf("end: %w", err)
		}
	}
	if v := c.Query("period"); v != "" {
		p, err := date.ParsePeriod(v)
		if err != nil {
			return q, err
		}
		q.r = p.Range(q.r.To)
	}

	q.mode = c.DefaultQuery("mode", "merged")
	if q.mode != "merged" && q.mode != "category" {
		return q, fmt.Errorf("unknown mode %q want merged or category", q.mode)
	}

	q.opts.Policy = s.policy
	if v := c.Query("policy"); v != "" {
		if q.opts.Policy, err = realized.ParsePolicy(v); err != nil {
			return q, err
		}
	}
	if v := c.Query("parallel"); v != "" {
		if q.opts.Parallel, err = strconv.ParseBool(v); err != nil {
			return q, fmt.Errorf("parallel: %w", err)
		}
	}
	return q, nil
}

func (s *Server) getMetrics(c *gin.Context) {
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := realized.WithLogger(c.Request.Context(), s.log)
	start := time.Now()
	if q.mode == "category" {
		results, err := realized.ComputeByCategory(ctx, s.baseline, s.txs, q.r, q.opts)
		var issues []realized.Issue
		for _, res := range results {
			issues = append(issues, res.Issues...)
		}
		s.metrics.observe(q.mode, start, issues, err)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
		return
	}

	res, err := realized.Compute(ctx, s.baseline, s.txs, q.r, q.opts)
	var issues []realized.Issue
	if res != nil {
		issues = res.Issues
	}
	s.metrics.observe(q.mode, start, issues, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getSymbols(c *gin.Context) {
	on, err := date.Parse(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := s.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !q.r.Contains(on) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s is outside of %s", on, q.r)})
		return
	}

	start := time.Now()
	res, err := realized.Compute(realized.WithLogger(c.Request.Context(), s.log), s.baseline, s.txs, q.r, q.opts)
	s.metrics.observe("symbols", start, nil, err)
	if err != nil {
		s.fail(c, err)
		return
	}
	symbols := res.SymbolsOn(on)
	if symbols == nil {
		symbols = []realized.SymbolRealized{}
	}
	c.JSON(http.StatusOK, gin.H{"date": on, "symbols": symbols})
}

// fail maps a computation error to its HTTP status.
func (s *Server) fail(c *gin.Context, err error) {
	var ce *realized.ConfigurationError
	var die *realized.DataIntegrityError
	switch {
	case errors.As(err, &ce):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &die):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		s.log.Error("computation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
