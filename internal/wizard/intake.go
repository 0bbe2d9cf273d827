package wizard

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"resumegenius/internal/errors"
)

// IntakeMode selects how the resume is provided.
type IntakeMode string

const (
	ModeUpload IntakeMode = "upload"
	ModePaste  IntakeMode = "paste"
	// ModeSaved picks a resume already in the catalog instead of the intake.
	ModeSaved IntakeMode = "saved"
)

// IntakeLimits bounds uploaded files.
type IntakeLimits struct {
	MaxSize    int64
	Extensions []string
}

// DefaultIntakeLimits accepts PDF and DOCX files up to 5MB.
var DefaultIntakeLimits = IntakeLimits{
	MaxSize:    5 * 1024 * 1024,
	Extensions: []string{".pdf", ".docx"},
}

// UploadedFile is a file accepted by the intake.
type UploadedFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// IntakeResult is a submitted resume.
type IntakeResult struct {
	Mode    IntakeMode    `json:"mode"`
	File    *UploadedFile `json:"file,omitempty"`
	Text    string        `json:"text,omitempty"`
	SavedID string        `json:"savedId,omitempty"`
	Name    string        `json:"name,omitempty"`
}

func (r IntakeResult) processedMessage() string {
	switch r.Mode {
	case ModeUpload:
		return "Your resume has been successfully uploaded and processed."
	case ModeSaved:
		return fmt.Sprintf("%s will be used for tailoring.", r.Name)
	default:
		return "Your resume content has been successfully processed."
	}
}

// IntakeView is the intake state shown by step 1.
type IntakeView struct {
	Mode       IntakeMode    `json:"mode"`
	File       *UploadedFile `json:"file,omitempty"`
	TextLength int           `json:"textLength"`
	Accept     []string      `json:"accept"`
	MaxSize    int64         `json:"maxSize"`
}

// ResumeIntake is the step 1 sub-flow. Upload and paste are mutually
// exclusive: switching modes discards what the other mode held.
type ResumeIntake struct {
	limits IntakeLimits

	mu   sync.Mutex
	mode IntakeMode
	file *UploadedFile
	text string
}

// NewResumeIntake starts in upload mode.
func NewResumeIntake(limits IntakeLimits) *ResumeIntake {
	if limits.MaxSize <= 0 {
		limits.MaxSize = DefaultIntakeLimits.MaxSize
	}
	if len(limits.Extensions) == 0 {
		limits.Extensions = DefaultIntakeLimits.Extensions
	}
	return &ResumeIntake{limits: limits, mode: ModeUpload}
}

// SetMode switches between upload and paste.
func (r *ResumeIntake) SetMode(mode IntakeMode) error {
	if mode != ModeUpload && mode != ModePaste {
		return intakeError("Invalid mode", fmt.Sprintf("Unknown intake mode %q.", mode))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if mode == r.mode {
		return nil
	}
	r.mode = mode
	r.file = nil
	r.text = ""
	return nil
}

// Mode returns the active mode.
func (r *ResumeIntake) Mode() IntakeMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Upload checks and keeps a file. It switches to upload mode.
func (r *ResumeIntake) Upload(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(r.limits.Extensions, ext) {
		return intakeError("Invalid file format", "Please upload a PDF or DOCX file.").
			WithContext("file", name)
	}
	if size > r.limits.MaxSize {
		return intakeError("File too large", fmt.Sprintf("Maximum file size is %dMB.", r.limits.MaxSize/(1024*1024))).
			WithContext("file", name).
			WithContext("size", size)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != ModeUpload {
		r.mode, r.text = ModeUpload, ""
	}
	r.file = &UploadedFile{Name: name, Size: size}
	return nil
}

// Paste keeps pasted resume text. It switches to paste mode.
func (r *ResumeIntake) Paste(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != ModePaste {
		r.mode, r.file = ModePaste, nil
	}
	r.text = text
}

// Submit returns the resume held by the active mode.
func (r *ResumeIntake) Submit() (IntakeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.mode {
	case ModeUpload:
		if r.file == nil {
			return IntakeResult{}, intakeError("No file selected", "Please upload a resume file first.")
		}
		f := *r.file
		return IntakeResult{Mode: ModeUpload, File: &f}, nil
	default:
		if strings.TrimSpace(r.text) == "" {
			return IntakeResult{}, intakeError("No content", "Please enter your resume content first.")
		}
		return IntakeResult{Mode: ModePaste, Text: r.text}, nil
	}
}

// View returns the intake state for rendering.
func (r *ResumeIntake) View() IntakeView {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := IntakeView{
		Mode:       r.mode,
		TextLength: len(r.text),
		Accept:     slices.Clone(r.limits.Extensions),
		MaxSize:    r.limits.MaxSize,
	}
	if r.file != nil {
		f := *r.file
		v.File = &f
	}
	return v
}

func intakeError(title, description string) *errors.AppError {
	return errors.NewValidationError(errors.ErrCodeValidation, title, nil).WithContext("description", description)
}
