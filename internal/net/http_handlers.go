package net

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	nethttp "net/http"
	"time"

	"dust-and-lead/server/internal/sim"
)

type HTTPHandlerConfig struct {
	ClientDir string
	Logger    *log.Logger
}

type joinRequest struct {
	Character string `json:"character"`
	Loadout   []struct {
		Key    string `json:"key"`
		Stacks int    `json:"stacks"`
	} `json:"loadout,omitempty"`
}

// NewHTTPHandler builds the non-websocket surface: join, health, and
// diagnostics, plus optional static client hosting.
func NewHTTPHandler(hub *Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/join", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			nethttp.Error(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(nethttp.MaxBytesReader(w, r.Body, 1<<16))
		if err != nil {
			nethttp.Error(w, "unreadable body", nethttp.StatusBadRequest)
			return
		}
		var req joinRequest
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				nethttp.Error(w, "malformed join request", nethttp.StatusBadRequest)
				return
			}
		}
		loadout := make([]sim.ItemStack, 0, len(req.Loadout))
		for _, stack := range req.Loadout {
			loadout = append(loadout, sim.ItemStack{Key: stack.Key, Stacks: stack.Stacks})
		}

		resp, err := hub.Join(req.Character, loadout)
		if err != nil {
			if errors.Is(err, ErrSessionLimit) {
				nethttp.Error(w, "server full", nethttp.StatusServiceUnavailable)
				return
			}
			logger.Printf("join rejected: %v", err)
			nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Printf("failed to encode join response: %v", err)
		}
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status     string              `json:"status"`
			ServerTime int64               `json:"serverTime"`
			TickRate   int                 `json:"tickRate"`
			Sessions   int                 `json:"sessions"`
			Players    []DiagnosticsPlayer `json:"players"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			TickRate:   sim.TickRate,
			Sessions:   hub.SessionCount(),
			Players:    hub.DiagnosticsSnapshot(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Printf("failed to encode diagnostics: %v", err)
		}
	})

	if cfg.ClientDir != "" {
		mux.Handle("/", nethttp.FileServer(nethttp.Dir(cfg.ClientDir)))
	}

	return mux
}
