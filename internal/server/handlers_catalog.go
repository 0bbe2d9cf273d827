package server

import (
	"net/http"

	"resumegenius/internal/catalog"
	"resumegenius/internal/forms"
	"resumegenius/internal/wizard"
)

func (s *Server) listResumesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"resumes": s.catalog.Resumes()})
}

func (s *Server) getResumeHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Resume(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listJobsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": s.catalog.Jobs()})
}

func (s *Server) getJobHandler(w http.ResponseWriter, r *http.Request) {
	job, err := s.catalog.Job(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) listTailoredHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tailoredResumes": s.catalog.Tailored()})
}

func (s *Server) listCoverLettersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"coverLetters": s.catalog.CoverLetters()})
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Dashboard())
}

func (s *Server) adminMetricsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.auth.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.AdminMetrics(list))
}

// adminLogsHandler serves the activity log filtered by the search, level and
// sort query parameters.
func (s *Server) adminLogsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	form := forms.LogQueryForm{
		Search: q.Get("search"),
		Level:  q.Get("level"),
		Sort:   q.Get("sort"),
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}

	entries := s.catalog.Logs(catalog.LogQuery{
		Search: form.Search,
		Level:  form.Level,
		Oldest: form.Sort == forms.LogSortOldest,
	})
	writeJSON(w, http.StatusOK, map[string]any{"logs": entries, "total": len(entries)})
}

// wizardSavedHandler fills the run with a saved resume, a saved job, or
// both. Nothing is recorded unless every requested id exists.
func (s *Server) wizardSavedHandler(w http.ResponseWriter, r *http.Request) {
	var form forms.SavedSelectionForm
	if err := parseJSONRequest(r, &form); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.forms.Validate(&form); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		res catalog.Resume
		job catalog.Job
		err error
	)
	if form.ResumeID != "" {
		if res, err = s.catalog.Resume(form.ResumeID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if form.JobID != "" {
		if job, err = s.catalog.Job(form.JobID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	c := s.wizardFor(r)
	var notes notifications
	if form.ResumeID != "" {
		c.UseSavedResume(res.ID, res.Name, &notes)
	}
	if form.JobID != "" {
		c.SetJob(wizard.JobDescription{Mode: wizard.JobModeSaved, SavedID: job.ID, Title: job.Title, URL: job.URL})
	}
	writeJSON(w, http.StatusOK, viewOf(c, notes))
}
