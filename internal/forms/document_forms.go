package forms

import "strings"

// Job description input modes.
const (
	JobModeURL  = "url"
	JobModeText = "text"
)

// JobDescriptionForm is a job given by URL or by pasted text.
type JobDescriptionForm struct {
	Mode string `json:"mode" validate:"oneof=url text"`
	URL  string `json:"url" validate:"required_if=Mode url,omitempty,url"`
	Text string `json:"text" validate:"required_if=Mode text,omitempty,min=50"`
}

func (f *JobDescriptionForm) rules() []rule {
	return []rule{
		{"Mode", "oneof", "Please choose URL or text input"},
		{"URL", "*", "Please enter a valid URL"},
		{"Text", "*", "Please enter a valid job description (minimum 50 characters)"},
	}
}

func (f *JobDescriptionForm) normalize() {
	if f.Mode == "" {
		f.Mode = JobModeURL
	}
	f.URL = strings.TrimSpace(f.URL)
	f.Text = strings.TrimSpace(f.Text)
	// only the active mode's input is kept
	if f.Mode == JobModeURL {
		f.Text = ""
	} else {
		f.URL = ""
	}
}

// TailoringForm picks the resume and job to tailor. A nil GenerateCoverLetter means true.
type TailoringForm struct {
	ResumeID            string `json:"resumeId" validate:"required"`
	JobID               string `json:"jobId" validate:"required"`
	Instructions        string `json:"instructions" validate:"max=4000"`
	GenerateCoverLetter *bool  `json:"generateCoverLetter"`
}

func (f *TailoringForm) rules() []rule {
	return []rule{
		{"ResumeID", "required", "Please select a resume"},
		{"JobID", "required", "Please select a job description"},
		{"Instructions", "max", "Additional instructions are too long"},
	}
}

func (f *TailoringForm) normalize() {
	f.Instructions = strings.TrimSpace(f.Instructions)
}

// CoverLetter resolves the cover letter flag, defaulting to true.
func (f *TailoringForm) CoverLetter() bool {
	return f.GenerateCoverLetter == nil || *f.GenerateCoverLetter
}

// LLMSettingsForm holds the default model settings.
type LLMSettingsForm struct {
	Provider    string   `json:"provider" validate:"required,oneof=openai anthropic"`
	Model       string   `json:"model" validate:"required"`
	Temperature *float64 `json:"temperature" validate:"required,gte=0,lte=1"`
	Fallback    bool     `json:"fallback"`
}

func (f *LLMSettingsForm) rules() []rule {
	return []rule{
		{"Provider", "*", "Please select a provider"},
		{"Model", "required", "Please select a model"},
		{"Temperature", "*", "Temperature must be between 0 and 1"},
	}
}

// Log levels and sort orders accepted by the logs view.
const (
	LogLevelAll   = "all"
	LogSortNewest = "newest"
	LogSortOldest = "oldest"
)

// LogQueryForm filters the activity log.
type LogQueryForm struct {
	Search string `json:"search"`
	Level  string `json:"level" validate:"oneof=all info warning error"`
	Sort   string `json:"sort" validate:"oneof=newest oldest"`
}

func (f *LogQueryForm) rules() []rule {
	return []rule{
		{"Level", "oneof", "Please choose a log level"},
		{"Sort", "oneof", "Please choose newest or oldest first"},
	}
}

func (f *LogQueryForm) normalize() {
	f.Search = strings.TrimSpace(f.Search)
	f.Level = strings.ToLower(strings.TrimSpace(f.Level))
	if f.Level == "" {
		f.Level = LogLevelAll
	}
	f.Sort = strings.ToLower(strings.TrimSpace(f.Sort))
	if f.Sort == "" {
		f.Sort = LogSortNewest
	}
}

// SavedSelectionForm picks a saved resume, a saved job, or both, for the
// wizard.
type SavedSelectionForm struct {
	ResumeID string `json:"resumeId" validate:"required_without=JobID"`
	JobID    string `json:"jobId" validate:"required_without=ResumeID"`
}

func (f *SavedSelectionForm) rules() []rule {
	const msg = "Please select a resume or a job description"
	return []rule{
		{"ResumeID", "required_without", msg},
		{"JobID", "required_without", msg},
	}
}

func (f *SavedSelectionForm) normalize() {
	f.ResumeID = strings.TrimSpace(f.ResumeID)
	f.JobID = strings.TrimSpace(f.JobID)
}
