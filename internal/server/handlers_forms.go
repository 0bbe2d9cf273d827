package server

import (
	"net/http"

	"resumegenius/internal/forms"
)

func (s *Server) jobDescriptionFormHandler(w http.ResponseWriter, r *http.Request) {
	var form forms.JobDescriptionForm
	if err := parseJSONRequest(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "form": form})
}

func (s *Server) tailoringFormHandler(w http.ResponseWriter, r *http.Request) {
	var form forms.TailoringForm
	if err := parseJSONRequest(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":               true,
		"form":                form,
		"generateCoverLetter": form.CoverLetter(),
	})
}

func (s *Server) getLLMSettingsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.get(r.Context(), userFrom(r.Context()).ID))
}

func (s *Server) putLLMSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var form forms.LLMSettingsForm
	if err := parseJSONRequest(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}

	settings := LLMSettings{
		Provider:    form.Provider,
		Model:       form.Model,
		Temperature: *form.Temperature,
		Fallback:    form.Fallback,
	}
	s.settings.put(r.Context(), userFrom(r.Context()).ID, settings)
	writeJSON(w, http.StatusOK, map[string]any{
		"settings": settings,
		"title":    "Model Settings Saved",
		"message":  "Your LLM model settings have been updated.",
	})
}
