// Package catalog holds the read-only document collections a signed-in user
// browses: saved resumes, job descriptions, tailored resumes, cover letters
// and the activity log.
package catalog

import (
	_ "embed"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"resumegenius/internal/errors"
)

//go:embed sample.json
var sampleData []byte

// PersonalInfo is the contact block of a resume.
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Period      string `json:"period"`
	Description string `json:"description"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Resume is a saved base resume.
type Resume struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Created      time.Time    `json:"created"`
	LastModified time.Time    `json:"lastModified"`
	Skills       []string     `json:"skills"`
	Format       string       `json:"format"`
	WordCount    int          `json:"wordCount"`
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
}

// Job is a saved job description.
type Job struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	Location         string    `json:"location"`
	Created          time.Time `json:"created"`
	Source           string    `json:"source"`
	URL              string    `json:"url"`
	Description      string    `json:"description"`
	TechnicalSkills  []string  `json:"technicalSkills"`
	FunctionalSkills []string  `json:"functionalSkills"`
	Requirements     []string  `json:"requirements"`
	Responsibilities []string  `json:"responsibilities"`
}

// TailoredResume is a resume already tailored to a job.
type TailoredResume struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	BaseResume string    `json:"baseResume"`
	Created    time.Time `json:"created"`
	MatchScore int       `json:"matchScore"`
	Status     string    `json:"status"`
}

type CoverLetter struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Position     string    `json:"position"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"lastModified"`
}

// LogEntry is one line of the activity log.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source"`
	Details   string    `json:"details"`
}

// Catalog is an immutable set of collections. Accessors return copies.
type Catalog struct {
	resumes      []Resume
	jobs         []Job
	tailored     []TailoredResume
	coverLetters []CoverLetter
	logs         []LogEntry
}

type catalogFile struct {
	Resumes      []Resume         `json:"resumes"`
	Jobs         []Job            `json:"jobs"`
	Tailored     []TailoredResume `json:"tailoredResumes"`
	CoverLetters []CoverLetter    `json:"coverLetters"`
	Logs         []LogEntry       `json:"logs"`
}

// Load decodes a catalog from its JSON form.
func Load(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to read document catalog", err)
	}
	return &Catalog{
		resumes:      f.Resumes,
		jobs:         f.Jobs,
		tailored:     f.Tailored,
		coverLetters: f.CoverLetters,
		logs:         f.Logs,
	}, nil
}

// Sample returns the demo catalog shipped with the binary.
func Sample() (*Catalog, error) {
	return Load(sampleData)
}

func (c *Catalog) Resumes() []Resume { return slices.Clone(c.resumes) }

func (c *Catalog) Jobs() []Job { return slices.Clone(c.jobs) }

func (c *Catalog) Tailored() []TailoredResume { return slices.Clone(c.tailored) }

func (c *Catalog) CoverLetters() []CoverLetter { return slices.Clone(c.coverLetters) }

// Resume returns the saved resume with id.
func (c *Catalog) Resume(id string) (Resume, error) {
	i := slices.IndexFunc(c.resumes, func(r Resume) bool { return r.ID == id })
	if i < 0 {
		return Resume{}, notFound("Resume not found", "resume_id", id)
	}
	return c.resumes[i], nil
}

// Job returns the saved job description with id.
func (c *Catalog) Job(id string) (Job, error) {
	i := slices.IndexFunc(c.jobs, func(j Job) bool { return j.ID == id })
	if i < 0 {
		return Job{}, notFound("Job description not found", "job_id", id)
	}
	return c.jobs[i], nil
}

func notFound(message, key, id string) error {
	return errors.NewNotFoundError(errors.ErrCodeNotFound, message, nil).WithContext(key, id)
}

// LogQuery filters the activity log. An empty or "all" Level matches every
// level; Search matches message, source and details without regard to case.
type LogQuery struct {
	Search string
	Level  string
	Oldest bool
}

// Logs returns the entries matching q, newest first unless q.Oldest.
func (c *Catalog) Logs(q LogQuery) []LogEntry {
	search := strings.ToLower(q.Search)
	out := []LogEntry{}
	for _, e := range c.logs {
		if q.Level != "" && q.Level != "all" && e.Level != q.Level {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Message), search) &&
			!strings.Contains(strings.ToLower(e.Source), search) &&
			!strings.Contains(strings.ToLower(e.Details), search) {
			continue
		}
		out = append(out, e)
	}

	slices.SortStableFunc(out, func(a, b LogEntry) int {
		if q.Oldest {
			return a.Timestamp.Compare(b.Timestamp)
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}
