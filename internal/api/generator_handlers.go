package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/generation"
)

// Generator produces a post for a generation request.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (generation.Result, error)
}

type GeneratorHandler struct {
	generator Generator
	logger    *slog.Logger
}

func NewGeneratorHandler(generator Generator, logger *slog.Logger) *GeneratorHandler {
	return &GeneratorHandler{generator: generator, logger: logger}
}

// Generate handles POST /generate
func (h *GeneratorHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Reference images arrive inline as data URLs.
	r.Body = http.MaxBytesReader(w, r.Body, 25<<20)

	var req generation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, generation.ErrInvalidMode) {
			writeDetail(w, h.logger, http.StatusBadRequest, "mode must be trend or remix")
			return
		}
		h.logger.Error("generation failed", "mode", req.Mode, "error", err)
		http.Error(w, "Generation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}
