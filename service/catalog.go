package service

import (
	"strings"

	"github.com/ibreez3/email-rewriter/rewriter"
)

type ModelInfo struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Provider string `json:"provider"`
}

type Catalog struct {
	Provider string      `json:"provider"`
	Models   []ModelInfo `json:"models"`
	Tones    []string    `json:"tones"`
}

// The model list comes from configuration; the provider offers no listing
// endpoint to query.
func (s *Service) Catalog() Catalog {
	provider := s.cfg.OpenAI.Provider
	models := make([]ModelInfo, 0, len(s.cfg.Models))
	for _, m := range s.cfg.Models {
		models = append(models, ModelInfo{ID: m, Label: provider + ": " + m, Provider: provider})
	}
	tones := make([]string, 0, len(rewriter.Tones))
	for _, t := range rewriter.Tones {
		tones = append(tones, string(t))
	}
	return Catalog{Provider: provider, Models: models, Tones: tones}
}

// resolveModel accepts either a bare model id or its "<Provider>: <id>" label
// and reports whether the model is in the catalog.
func (s *Service) resolveModel(sel string) (string, bool) {
	sel = strings.TrimSpace(sel)
	sel = strings.TrimPrefix(sel, s.cfg.OpenAI.Provider+": ")
	for _, m := range s.cfg.Models {
		if m == sel {
			return m, true
		}
	}
	return "", false
}
