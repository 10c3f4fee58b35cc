// cmd/interactiond/main.go
//
// Standalone drug interaction daemon: serves the rule base without the
// database-backed analytics surface, for deployments that only need the
// interaction checker.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/pharmalytics/inventory-engine/internal/config"
	"github.com/pharmalytics/inventory-engine/internal/engine/interaction"
	"github.com/pharmalytics/inventory-engine/internal/rules"
	"github.com/pharmalytics/inventory-engine/internal/service"
	"github.com/pharmalytics/inventory-engine/pkg/logger"
)

type checkRequest struct {
	Drugs []string `json:"drugs"`
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	ruleLoader, err := rules.NewLoader(cfg.Rules.Path)
	if err != nil {
		log.Fatalf("Failed to load interaction rules: %v", err)
	}

	svc := service.NewInteractionService(
		interaction.NewMatcher(cfg.Engine.SimilarityThreshold),
		ruleLoader,
	)

	r := mux.NewRouter()

	r.HandleFunc("/check", func(w http.ResponseWriter, req *http.Request) {
		var body checkRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "body must contain a drugs array")
			return
		}

		drugs := make([]string, 0, len(body.Drugs))
		for _, d := range body.Drugs {
			if trimmed := strings.TrimSpace(d); trimmed != "" {
				drugs = append(drugs, trimmed)
			}
		}
		if len(drugs) < 2 {
			writeError(w, http.StatusBadRequest, "at least two drug names are required")
			return
		}

		writeJSON(w, http.StatusOK, svc.Check(drugs))
	}).Methods("POST")

	r.HandleFunc("/reload", func(w http.ResponseWriter, req *http.Request) {
		if err := svc.Reload(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"rules": svc.RuleCount()})
	}).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Interaction daemon starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
