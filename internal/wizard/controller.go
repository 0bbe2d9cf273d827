// Package wizard drives the seven-step flow that produces a tailored resume.
package wizard

import (
	"fmt"
	"sync"
)

const (
	FirstStep = 1
	LastStep  = 7
)

// StepStatus is how a step is drawn relative to the current step.
type StepStatus string

const (
	StatusPending   StepStatus = "pending"
	StatusActive    StepStatus = "active"
	StatusCompleted StepStatus = "completed"
)

// Step describes one wizard step. Fills names the Session field the step
// captures, empty when the step captures nothing yet.
type Step struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Fills  string `json:"fills,omitempty"`
}

var steps = [LastStep]Step{
	{Number: 1, Title: "Upload Resume", Fills: "resume"},
	{Number: 2, Title: "Job Description", Fills: "job"},
	{Number: 3, Title: "Tailoring Options", Fills: "options"},
	{Number: 4, Title: "Generate Documents"},
	{Number: 5, Title: "Review Tailored Resume"},
	{Number: 6, Title: "Review Cover Letter"},
	{Number: 7, Title: "Download"},
}

// Notification is a transient, non-blocking message for the user.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Destructive bool   `json:"destructive,omitempty"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// BackResult is the outcome of Back.
type BackResult int

const (
	// BackMoved means the wizard went one step back.
	BackMoved BackResult = iota
	// BackLeave means the wizard was on its first step and the user should be
	// returned to the view that opened it.
	BackLeave
)

func (r BackResult) String() string {
	if r == BackLeave {
		return "leave"
	}
	return "moved"
}

// Controller holds the current step of one wizard run and its shared Session.
type Controller struct {
	mu      sync.Mutex
	current int
	session Session
	intake  *ResumeIntake
}

// NewController starts a wizard at step 1.
func NewController(limits IntakeLimits) *Controller {
	return &Controller{
		current: FirstStep,
		intake:  NewResumeIntake(limits),
	}
}

// Current returns the current step number.
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Next advances one step and notifies n. On the last step it does nothing and
// sends no notification. It reports whether the step changed.
func (c *Controller) Next(n Notifier) bool {
	c.mu.Lock()
	if c.current >= LastStep {
		c.mu.Unlock()
		return false
	}
	c.current++
	step := steps[c.current-1]
	c.mu.Unlock()

	if n != nil {
		n.Notify(Notification{
			Title:       "Step completed",
			Description: fmt.Sprintf("Moving on to step %d: %s", step.Number, step.Title),
		})
	}
	return true
}

// Back goes one step back. On the first step the step is unchanged and
// BackLeave is returned.
func (c *Controller) Back() BackResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current <= FirstStep {
		return BackLeave
	}
	c.current--
	return BackMoved
}

// IsCompleted reports whether step lies behind the current step.
func (c *Controller) IsCompleted(step int) bool {
	return c.Current() > step
}

// IsActive reports whether step is the current step.
func (c *Controller) IsActive(step int) bool {
	return c.Current() == step
}

// Status returns the drawing state of step.
func (c *Controller) Status(step int) StepStatus {
	return statusOf(step, c.Current())
}

func statusOf(step, current int) StepStatus {
	switch {
	case step < current:
		return StatusCompleted
	case step == current:
		return StatusActive
	default:
		return StatusPending
	}
}

// StepView is a step together with its drawing state.
type StepView struct {
	Step
	Status StepStatus `json:"status"`
}

// Steps returns all steps with their status.
func (c *Controller) Steps() []StepView {
	current := c.Current()
	out := make([]StepView, len(steps))
	for i, s := range steps {
		out[i] = StepView{Step: s, Status: statusOf(s.Number, current)}
	}
	return out
}

// ContentKind says what a step renders.
type ContentKind string

const (
	ContentResumeIntake ContentKind = "resume_intake"
	ContentPlaceholder  ContentKind = "placeholder"
)

// Content is what the current step shows.
type Content struct {
	Step   Step        `json:"step"`
	Kind   ContentKind `json:"kind"`
	Intake *IntakeView `json:"intake,omitempty"`
}

// Content resolves the current step's content from the step number alone.
func (c *Controller) Content() Content {
	current := c.Current()
	content := Content{Step: steps[current-1], Kind: ContentPlaceholder}
	if current == FirstStep {
		v := c.intake.View()
		content.Kind = ContentResumeIntake
		content.Intake = &v
	}
	return content
}

// Intake returns the resume intake sub-flow of step 1.
func (c *Controller) Intake() *ResumeIntake {
	return c.intake
}

// Session returns a copy of the data captured so far.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.clone()
}

// SubmitResume finishes the intake sub-flow and records its result.
func (c *Controller) SubmitResume(n Notifier) (IntakeResult, error) {
	res, err := c.intake.Submit()
	if err != nil {
		return IntakeResult{}, err
	}

	c.mu.Lock()
	c.session.Resume = &res
	c.mu.Unlock()

	if n != nil {
		n.Notify(Notification{Title: "Resume processed", Description: res.processedMessage()})
	}
	return res, nil
}

// UseSavedResume records a saved resume as the step 1 result, bypassing the
// intake sub-flow. Whatever the intake held is left alone.
func (c *Controller) UseSavedResume(id, name string, n Notifier) IntakeResult {
	res := IntakeResult{Mode: ModeSaved, SavedID: id, Name: name}

	c.mu.Lock()
	c.session.Resume = &res
	c.mu.Unlock()

	if n != nil {
		n.Notify(Notification{Title: "Resume selected", Description: res.processedMessage()})
	}
	return res
}

// SetJob records the job description.
func (c *Controller) SetJob(job JobDescription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Job = &job
}

// SetOptions records the tailoring options.
func (c *Controller) SetOptions(opts TailoringOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Options = &opts
}
