package server

import (
	"net/http"
	"strings"

	"resumegenius/internal/forms"
	"resumegenius/internal/guard"
	"resumegenius/internal/wizard"
)

// WizardView is the wizard state returned by every wizard endpoint.
type WizardView struct {
	Current       int                   `json:"current"`
	Steps         []wizard.StepView     `json:"steps"`
	Content       wizard.Content        `json:"content"`
	Session       wizard.Session        `json:"session"`
	Notifications []wizard.Notification `json:"notifications,omitempty"`
}

// notifications collects what the wizard reports during one request.
type notifications []wizard.Notification

func (n *notifications) Notify(note wizard.Notification) { *n = append(*n, note) }

func viewOf(c *wizard.Controller, notes notifications) WizardView {
	return WizardView{
		Current:       c.Current(),
		Steps:         c.Steps(),
		Content:       c.Content(),
		Session:       c.Session(),
		Notifications: notes,
	}
}

func (s *Server) wizardFor(r *http.Request) *wizard.Controller {
	return s.wizards.Get(authContextFrom(r.Context()).SessionID())
}

func (s *Server) wizardHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewOf(s.wizardFor(r), nil))
}

func (s *Server) wizardNextHandler(w http.ResponseWriter, r *http.Request) {
	c := s.wizardFor(r)
	var notes notifications
	if c.Next(&notes) {
		s.metrics.RecordWizardTransition(r.Context(), "next", c.Current())
	}
	writeJSON(w, http.StatusOK, viewOf(c, notes))
}

func (s *Server) wizardBackHandler(w http.ResponseWriter, r *http.Request) {
	sid := authContextFrom(r.Context()).SessionID()
	c := s.wizards.Get(sid)

	if c.Back() == wizard.BackLeave {
		s.wizards.Reset(sid)
		s.metrics.RecordWizardTransition(r.Context(), wizard.BackLeave.String(), wizard.FirstStep)
		writeJSON(w, http.StatusOK, map[string]any{
			"result": wizard.BackLeave.String(),
			"target": guard.PathTailored,
		})
		return
	}
	s.metrics.RecordWizardTransition(r.Context(), "back", c.Current())
	writeJSON(w, http.StatusOK, map[string]any{
		"result": wizard.BackMoved.String(),
		"view":   viewOf(c, nil),
	})
}

// intakeRequest is the JSON form of an intake action. A multipart request
// carrying a "file" part is the upload form of the same action.
type intakeRequest struct {
	Mode   wizard.IntakeMode `json:"mode"`
	Text   string            `json:"text"`
	Submit bool              `json:"submit"`
}

func (s *Server) wizardIntakeHandler(w http.ResponseWriter, r *http.Request) {
	c := s.wizardFor(r)
	intake := c.Intake()

	var req intakeRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			s.writeError(w, r, invalidRequest("Upload could not be read"))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		_, header, err := r.FormFile("file")
		if err != nil {
			s.writeError(w, r, invalidRequest("Upload must carry a file part"))
			return
		}
		if err := intake.Upload(header.Filename, header.Size); err != nil {
			s.writeError(w, r, err)
			return
		}
		req.Submit = r.FormValue("submit") == "true"
	} else {
		if err := parseJSONRequest(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if req.Mode != "" {
			if err := intake.SetMode(req.Mode); err != nil {
				s.writeError(w, r, err)
				return
			}
		}
		if req.Mode == wizard.ModePaste {
			intake.Paste(req.Text)
		}
	}

	var notes notifications
	if req.Submit {
		if _, err := c.SubmitResume(&notes); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, viewOf(c, notes))
}

func (s *Server) wizardJobHandler(w http.ResponseWriter, r *http.Request) {
	var form forms.JobDescriptionForm
	if err := parseJSONRequest(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}

	c := s.wizardFor(r)
	c.SetJob(wizard.JobDescription{Mode: form.Mode, URL: form.URL, Text: form.Text})
	writeJSON(w, http.StatusOK, viewOf(c, nil))
}

// optionsRequest carries the step 3 settings. The resume and job come from
// what the wizard run already holds.
type optionsRequest struct {
	Instructions        string `json:"instructions"`
	GenerateCoverLetter *bool  `json:"generateCoverLetter"`
}

func (s *Server) wizardOptionsHandler(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	c := s.wizardFor(r)
	sess := c.Session()
	form := forms.TailoringForm{
		Instructions:        req.Instructions,
		GenerateCoverLetter: req.GenerateCoverLetter,
	}
	if sess.Resume != nil {
		form.ResumeID = resumeRef(*sess.Resume)
	}
	if sess.Job != nil {
		form.JobID = jobRef(*sess.Job)
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}

	c.SetOptions(wizard.TailoringOptions{
		Instructions:        form.Instructions,
		GenerateCoverLetter: form.CoverLetter(),
	})
	writeJSON(w, http.StatusOK, viewOf(c, nil))
}

func resumeRef(res wizard.IntakeResult) string {
	if res.SavedID != "" {
		return res.SavedID
	}
	if res.File != nil {
		return res.File.Name
	}
	return string(res.Mode)
}

func jobRef(job wizard.JobDescription) string {
	if job.SavedID != "" {
		return job.SavedID
	}
	if job.Mode == forms.JobModeURL {
		return job.URL
	}
	return job.Mode
}
