package wizard

// Session is the data a wizard run carries from step to step.
type Session struct {
	Resume  *IntakeResult     `json:"resume,omitempty"`
	Job     *JobDescription   `json:"job,omitempty"`
	Options *TailoringOptions `json:"options,omitempty"`
}

// JobModeSaved marks a job picked from the saved job descriptions.
const JobModeSaved = "saved"

// JobDescription is the job the resume is tailored for, given as a URL, as
// text, or picked from the saved job descriptions.
type JobDescription struct {
	Mode    string `json:"mode"`
	URL     string `json:"url,omitempty"`
	Text    string `json:"text,omitempty"`
	SavedID string `json:"savedId,omitempty"`
	Title   string `json:"title,omitempty"`
}

// TailoringOptions are the generation settings picked in step 3.
type TailoringOptions struct {
	Instructions        string `json:"instructions,omitempty"`
	GenerateCoverLetter bool   `json:"generateCoverLetter"`
}

func (s Session) clone() Session {
	out := Session{}
	if s.Resume != nil {
		r := *s.Resume
		out.Resume = &r
	}
	if s.Job != nil {
		j := *s.Job
		out.Job = &j
	}
	if s.Options != nil {
		o := *s.Options
		out.Options = &o
	}
	return out
}
