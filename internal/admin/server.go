package admin

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"twinops-sim/internal/ai"
	"twinops-sim/internal/logging"
	"twinops-sim/internal/sim"
	"twinops-sim/internal/twin"
)

// Server is the dashboard HTTP server: an HTML overview plus a JSON API over
// the entity store, the simulator and the AI gateway.
type Server struct {
	Sim     *sim.Simulator
	Gateway *ai.Gateway
	tpl     *template.Template
	mux     *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

// NewServer creates a dashboard server. gateway may be nil to disable the AI
// endpoints.
func NewServer(simulator *sim.Simulator, gateway *ai.Gateway) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{Sim: simulator, Gateway: gateway, tpl: tpl, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/definitions", s.handleDefinitions)
	s.mux.HandleFunc("/api/instances", s.handleInstances)
	s.mux.HandleFunc("/api/instances/select", s.handleSelect)
	s.mux.HandleFunc("/api/instances/spawn", s.handleSpawn)
	s.mux.HandleFunc("/api/telemetry", s.handleTelemetry)
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/definitions/generate", s.handleGenerateSchema)
	s.mux.HandleFunc("/api/anomalies", s.handleAnomalies)
	s.mux.HandleFunc("/api/predict", s.handlePredict)
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Definitions []twin.Definition
		Health      []sim.DefinitionHealth
		Instances   []twin.Instance
		Model       string
	}{
		Definitions: s.Sim.Store().Definitions(),
		Health:      s.Sim.Health(),
		Instances:   s.Sim.Store().Instances(),
	}
	if s.Gateway != nil {
		data.Model = s.Gateway.Model()
	}
	_ = s.tpl.Execute(w, data)
}

func (s *Server) handleDefinitions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Store().Definitions())
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Store().Instances())
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.TelemetrySnapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Health())
}

// handleSelect is a pure lookup. A missing id yields a null instance, not an
// error.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	resp := struct {
		Instance *twin.Instance `json:"instance"`
	}{}
	if inst, ok := s.Sim.Store().FindInstance(id); ok {
		resp.Instance = &inst
	}
	writeJSON(w, resp)
}

// maxSpawnCount bounds one spawn request so a single call cannot flood the
// in-memory store.
const maxSpawnCount = 100

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	definitionID := r.URL.Query().Get("definition")
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))
	if count <= 0 {
		count = 1
	}
	if count > maxSpawnCount {
		http.Error(w, fmt.Sprintf("count exceeds maximum of %d", maxSpawnCount), http.StatusBadRequest)
		return
	}
	var props map[string]twin.Value
	if r.Body != nil {
		// Optional JSON body with initial property values; ignored when absent.
		_ = json.NewDecoder(r.Body).Decode(&props)
	}
	spawned, err := s.Sim.Spawn(definitionID, count, props)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(spawned)
}

func (s *Server) handleGenerateSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Gateway == nil {
		http.Error(w, "AI gateway not configured", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		http.Error(w, "prompt required", http.StatusBadRequest)
		return
	}

	log := logging.FromContext(r.Context())
	def, err := s.Gateway.GenerateSchema(r.Context(), req.Prompt)
	if err != nil {
		log.Error("schema generation failed", "err", err)
		http.Error(w, "schema generation unavailable", http.StatusBadGateway)
		return
	}
	if err := s.Sim.Store().AppendDefinition(*def); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(def)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Gateway == nil {
		http.Error(w, "AI gateway not configured", http.StatusServiceUnavailable)
		return
	}
	log := logging.FromContext(r.Context())

	inst, ok := s.Sim.Store().FindInstance(r.URL.Query().Get("instance"))
	if !ok {
		http.Error(w, "instance not found", http.StatusNotFound)
		return
	}
	def, ok := s.Sim.Store().FindDefinition(inst.DefinitionID)
	if !ok {
		http.Error(w, "definition not found", http.StatusNotFound)
		return
	}

	report, err := s.Gateway.DetectAnomalies(r.Context(), inst, def)
	if err != nil {
		log.Error("anomaly detection failed", "instance", inst.ID, "err", err)
		http.Error(w, "anomaly detection unavailable", http.StatusBadGateway)
		return
	}
	for _, a := range report.Anomalies {
		if err := s.Sim.RaiseAlert(inst.ID, a.Severity, a.Message); err != nil {
			log.Error("alert append failed", "instance", inst.ID, "err", err)
		}
	}
	writeJSON(w, report)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Gateway == nil {
		http.Error(w, "AI gateway not configured", http.StatusServiceUnavailable)
		return
	}
	log := logging.FromContext(r.Context())

	inst, ok := s.Sim.Store().FindInstance(r.URL.Query().Get("instance"))
	if !ok {
		http.Error(w, "instance not found", http.StatusNotFound)
		return
	}
	horizon, _ := strconv.Atoi(r.URL.Query().Get("horizon"))
	if horizon <= 0 {
		horizon = 24
	}

	pred, err := s.Gateway.PredictFutureState(r.Context(), inst, horizon)
	if err != nil {
		log.Error("prediction failed", "instance", inst.ID, "err", err)
		http.Error(w, "prediction unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, pred)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
