package catalog

import (
	"maps"
	"slices"
	"strings"

	"resumegenius/internal/users"
)

// Summary is what the dashboard shows a signed-in user. CanTailor is false
// until there is at least one resume and one job.
type Summary struct {
	Resumes        int              `json:"resumes"`
	Jobs           int              `json:"jobs"`
	Tailored       int              `json:"tailored"`
	CoverLetters   int              `json:"coverLetters"`
	CanTailor      bool             `json:"canTailor"`
	RecentTailored []TailoredResume `json:"recentTailored"`
}

// Dashboard counts the collections and lists the latest tailored resumes.
func (c *Catalog) Dashboard() Summary {
	recent := c.Tailored()
	slices.SortStableFunc(recent, func(a, b TailoredResume) int {
		return b.Created.Compare(a.Created)
	})
	if len(recent) > 3 {
		recent = recent[:3]
	}
	return Summary{
		Resumes:        len(c.resumes),
		Jobs:           len(c.jobs),
		Tailored:       len(c.tailored),
		CoverLetters:   len(c.coverLetters),
		CanTailor:      len(c.resumes) > 0 && len(c.jobs) > 0,
		RecentTailored: recent,
	}
}

// Count is one slice of a distribution.
type Count struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// DayCount is the number of documents created on one day.
type DayCount struct {
	Date         string `json:"date"`
	Resumes      int    `json:"resumes"`
	CoverLetters int    `json:"coverLetters"`
}

// Metrics is the admin dashboard.
type Metrics struct {
	TotalUsers          int        `json:"totalUsers"`
	ApprovedUsers       int        `json:"approvedUsers"`
	PendingUsers        int        `json:"pendingUsers"`
	Admins              int        `json:"admins"`
	TotalResumes        int        `json:"totalResumes"`
	TotalCoverLetters   int        `json:"totalCoverLetters"`
	AvgMatchScore       int        `json:"avgMatchScore"`
	MostUsedFormat      string     `json:"mostUsedFormat"`
	DocTypeDistribution []Count    `json:"docTypeDistribution"`
	JobSources          []Count    `json:"jobSources"`
	LogLevels           []Count    `json:"logLevels"`
	DocumentsPerDay     []DayCount `json:"documentsPerDay"`
}

// AdminMetrics derives the admin dashboard from the catalog and the user
// directory. Tailored resumes count as resumes.
func (c *Catalog) AdminMetrics(directory []users.PublicUser) Metrics {
	m := Metrics{
		TotalUsers:        len(directory),
		TotalResumes:      len(c.resumes) + len(c.tailored),
		TotalCoverLetters: len(c.coverLetters),
	}
	for _, u := range directory {
		if u.IsApproved {
			m.ApprovedUsers++
		} else {
			m.PendingUsers++
		}
		if u.IsAdmin() {
			m.Admins++
		}
	}

	if len(c.tailored) > 0 {
		total := 0
		for _, t := range c.tailored {
			total += t.MatchScore
		}
		m.AvgMatchScore = total / len(c.tailored)
	}

	formats := make(map[string]int)
	for _, r := range c.resumes {
		formats[r.Format]++
	}
	if top := counts(formats); len(top) > 0 {
		m.MostUsedFormat = top[0].Name
	}

	m.DocTypeDistribution = []Count{
		{Name: "Resumes", Value: m.TotalResumes},
		{Name: "Cover Letters", Value: m.TotalCoverLetters},
	}

	sources := make(map[string]int)
	for _, j := range c.jobs {
		sources[j.Source]++
	}
	m.JobSources = counts(sources)

	levels := make(map[string]int)
	for _, e := range c.logs {
		levels[e.Level]++
	}
	m.LogLevels = counts(levels)

	m.DocumentsPerDay = c.documentsPerDay()
	return m
}

func (c *Catalog) documentsPerDay() []DayCount {
	days := make(map[string]*DayCount)
	day := func(date string) *DayCount {
		d, ok := days[date]
		if !ok {
			d = &DayCount{Date: date}
			days[date] = d
		}
		return d
	}
	const layout = "2006-01-02"
	for _, r := range c.resumes {
		day(r.Created.UTC().Format(layout)).Resumes++
	}
	for _, t := range c.tailored {
		day(t.Created.UTC().Format(layout)).Resumes++
	}
	for _, l := range c.coverLetters {
		day(l.Created.UTC().Format(layout)).CoverLetters++
	}

	out := make([]DayCount, 0, len(days))
	for _, date := range slices.Sorted(maps.Keys(days)) {
		out = append(out, *days[date])
	}
	return out
}

// counts orders a tally by value, largest first, then by name.
func counts(tally map[string]int) []Count {
	out := make([]Count, 0, len(tally))
	for name, v := range tally {
		out = append(out, Count{Name: name, Value: v})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if a.Value != b.Value {
			return b.Value - a.Value
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
