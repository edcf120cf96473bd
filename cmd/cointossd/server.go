// server.go - Read-only HTTP API over the sandbox state
package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/defi-wonderland/aztec-coin-toss/internal/cointoss"
	"github.com/defi-wonderland/aztec-coin-toss/internal/token"
	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

// Server exposes the sandbox's query surface over HTTP. All endpoints are
// read-only; state transitions happen only through the contracts.
type Server struct {
	config   *Config
	logger   *Logger
	metrics  *MetricsCollector
	limiter  *ClientRateLimiter
	toss     *cointoss.Contract
	token    *token.Contract
	accounts map[string]zknotes.Address
	started  time.Time
}

// NewServer creates the HTTP server around the deployed contracts.
func NewServer(config *Config, logger *Logger, metrics *MetricsCollector, toss *cointoss.Contract, tok *token.Contract, accounts map[string]zknotes.Address) *Server {
	return &Server{
		config:   config,
		logger:   logger,
		metrics:  metrics,
		limiter:  NewClientRateLimiter(config.RateLimitBurst, config.RateLimitPerSec, time.Second),
		toss:     toss,
		token:    tok,
		accounts: accounts,
		started:  time.Now(),
	}
}

// Start runs the HTTP server. Blocks until the listener fails.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.limited(s.handleHealth))
	mux.HandleFunc("/config", s.limited(s.handleConfig))
	mux.HandleFunc("/balance", s.limited(s.handleBalance))
	mux.HandleFunc("/bets", s.limited(s.handleBets))
	mux.HandleFunc("/results", s.limited(s.handleResults))
	mux.HandleFunc("/metrics", s.limited(s.handleMetrics))

	addr := fmt.Sprintf(":%d", s.config.HTTPPort)
	s.logger.Info("HTTP API listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// limited wraps a handler with per-client rate limiting.
func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			client = r.RemoteAddr
		}
		if !s.limiter.Allow(client) {
			s.metrics.IncrementCounter(MetricErrorCount)
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		s.metrics.IncrementCounter(MetricQueriesServed)
		h(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response: %v", err)
	}
}

// ownerParam resolves the "owner" query parameter, accepting either a
// base58 address or the name of a sandbox account.
func (s *Server) ownerParam(r *http.Request) (zknotes.Address, error) {
	raw := r.URL.Query().Get("owner")
	if raw == "" {
		return zknotes.ZeroAddress, fmt.Errorf("missing owner parameter")
	}
	if addr, ok := s.accounts[raw]; ok {
		return addr, nil
	}
	return zknotes.ParseAddress(raw)
}

func offsetParam(r *http.Request) int {
	raw := r.URL.Query().Get("offset")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": time.Since(s.started).Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.toss.GetConfigUnconstrained()
	if cfg == nil {
		http.Error(w, "contract not initialized", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"divinity":       cfg.Divinity.String(),
		"private_oracle": cfg.PrivateOracle.String(),
		"house":          cfg.House.String(),
		"token":          cfg.Token.String(),
		"bet_amount":     cfg.BetAmount.String(),
	})
}

// handleBalance exposes token balances for sandbox inspection. On a real
// deployment balances are private records; this is debug surface only.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"owner":   owner.String(),
		"balance": s.token.BalanceOf(owner).String(),
	})
}

func (s *Server) handleBets(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	bets := s.toss.GetUserBetsUnconstrained(owner, offsetParam(r))
	out := make([]map[string]interface{}, 0, len(bets))
	for _, b := range bets {
		out = append(out, map[string]interface{}{
			"owner":  b.Owner.String(),
			"bet_id": b.BetID.String(),
			"bet":    b.Bet,
		})
	}
	s.writeJSON(w, map[string]interface{}{"bets": out, "count": len(out)})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	owner, err := s.ownerParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	results := s.toss.GetResultsUnconstrained(owner, offsetParam(r))
	out := make([]map[string]interface{}, 0, len(results))
	for _, res := range results {
		out = append(out, map[string]interface{}{
			"owner":  res.Owner.String(),
			"sender": res.Sender.String(),
			"bet_id": res.BetID.String(),
			"result": res.Result,
		})
	}
	s.writeJSON(w, map[string]interface{}{"results": out, "count": len(out)})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.metrics.Summary())
}
