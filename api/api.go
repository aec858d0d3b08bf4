// Package api exposes the configuration surface over HTTP, standing in for
// the adapter's physical pushbuttons and status LEDs: a read-only view of the
// current policies and one advance trigger per cycling setting. The pipeline
// itself never mutates config through this package; triggers are relayed to
// the single owning writer of each policy slot.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/halfstep/midi2cv/config"
	"github.com/halfstep/midi2cv/model"
	"github.com/halfstep/midi2cv/watch"
	"github.com/rs/cors"
)

// triggerDebounce collapses bursts of advance triggers. The expected source
// is a relayed physical pushbutton, and contact bounce shows up as rapid
// duplicate requests.
const triggerDebounce = 25 * time.Millisecond

// Server serves the config surface. It reads the policy slots directly but
// only ever writes through the advance callbacks.
type Server struct {
	log        *slog.Logger
	priority   *watch.Slot[config.NotePriority]
	cleanup    *watch.Slot[config.ChordCleanup]
	portamento *watch.Slot[uint8]
	advance    map[string]func()
}

// NewServer wires the read slots and the per-setting advance triggers.
func NewServer(
	priority *watch.Slot[config.NotePriority],
	cleanup *watch.Slot[config.ChordCleanup],
	portamento *watch.Slot[uint8],
	advancePriority func(),
	advanceCleanup func(),
	log *slog.Logger,
) *Server {
	debPriority := debounce.New(triggerDebounce)
	debCleanup := debounce.New(triggerDebounce)
	return &Server{
		log:        log,
		priority:   priority,
		cleanup:    cleanup,
		portamento: portamento,
		advance: map[string]func(){
			"note-priority": func() { debPriority(advancePriority) },
			"chord-cleanup": func() { debCleanup(advanceCleanup) },
		},
	}
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	router.HandleFunc("/config/{setting}/advance", s.handleAdvance).Methods("POST")
	return cors.Default().Handler(router)
}

// ListenAndServe serves until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	s.log.Info("config surface listening", "addr", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	view := model.ConfigView{
		NotePriority:   s.priority.Get().String(),
		ChordCleanup:   s.cleanup.Get().String(),
		PortamentoTime: s.portamento.Get(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	setting := mux.Vars(r)["setting"]
	trigger, ok := s.advance[setting]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(model.ErrorResponse{Error: "no such setting: " + setting})
		return
	}
	s.log.Info("advance trigger received", "setting", setting)
	trigger()
	w.WriteHeader(http.StatusAccepted)
}
