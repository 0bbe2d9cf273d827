package forms

import (
	"strings"
	"testing"

	"resumegenius/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageOf(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	return appErr.Message
}

func ptr[T any](v T) *T { return &v }

func TestLoginForm(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&LoginForm{Email: "a@x.com", Password: "p"}))
	assert.Equal(t, "Please enter both email and password", messageOf(t, v.Validate(&LoginForm{Email: "a@x.com"})))
	assert.Equal(t, "Please enter both email and password", messageOf(t, v.Validate(&LoginForm{Email: "  ", Password: "p"})))
}

func TestRegisterForm(t *testing.T) {
	v := New()

	tests := []struct {
		name string
		form RegisterForm
		want string
	}{
		{"valid", RegisterForm{"alice", "alice@x.com", "password1", "password1"}, ""},
		{"missing username", RegisterForm{"", "alice@x.com", "password1", "password1"}, "All fields are required"},
		{"missing confirmation", RegisterForm{"alice", "alice@x.com", "password1", ""}, "All fields are required"},
		{"mismatch reported before length", RegisterForm{"alice", "alice@x.com", "short", "shorter"}, "Passwords do not match"},
		{"too short", RegisterForm{"alice", "alice@x.com", "short", "short"}, "Password must be at least 8 characters"},
		{"bad email", RegisterForm{"alice", "not-an-email", "password1", "password1"}, "Please enter a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.form
			err := v.Validate(&form)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, messageOf(t, err))
		})
	}
}

func TestValidate_FieldsContext(t *testing.T) {
	v := New()
	err := v.Validate(&RegisterForm{Username: "alice", Email: "alice@x.com", Password: "short", ConfirmPassword: "other"})

	appErr, ok := errors.As(err)
	require.True(t, ok)
	fields, ok := appErr.Context["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "Password must be at least 8 characters", fields["password"])
	assert.Equal(t, "Passwords do not match", fields["confirmPassword"])
}

func TestJobDescriptionForm(t *testing.T) {
	v := New()
	longText := strings.Repeat("Senior Go engineer. ", 4)

	tests := []struct {
		name string
		form JobDescriptionForm
		want string
	}{
		{"valid url", JobDescriptionForm{Mode: "url", URL: "https://example.com/jobs/1"}, ""},
		{"default mode is url", JobDescriptionForm{URL: "https://example.com/jobs/1"}, ""},
		{"empty url", JobDescriptionForm{Mode: "url"}, "Please enter a valid URL"},
		{"malformed url", JobDescriptionForm{Mode: "url", URL: "not a url"}, "Please enter a valid URL"},
		{"valid text", JobDescriptionForm{Mode: "text", Text: longText}, ""},
		{"short text", JobDescriptionForm{Mode: "text", Text: "Go dev"}, "Please enter a valid job description (minimum 50 characters)"},
		{"blank text", JobDescriptionForm{Mode: "text", Text: strings.Repeat(" ", 80)}, "Please enter a valid job description (minimum 50 characters)"},
		{"text mode ignores url", JobDescriptionForm{Mode: "text", URL: "bad", Text: longText}, ""},
		{"unknown mode", JobDescriptionForm{Mode: "fax"}, "Please choose URL or text input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := tt.form
			err := v.Validate(&form)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, messageOf(t, err))
		})
	}
}

func TestTailoringForm(t *testing.T) {
	v := New()

	assert.Equal(t, "Please select a resume", messageOf(t, v.Validate(&TailoringForm{})))
	assert.Equal(t, "Please select a job description", messageOf(t, v.Validate(&TailoringForm{ResumeID: "1"})))

	form := &TailoringForm{ResumeID: "1", JobID: "2"}
	require.NoError(t, v.Validate(form))
	assert.True(t, form.CoverLetter())

	form.GenerateCoverLetter = ptr(false)
	assert.False(t, form.CoverLetter())
}

func TestLLMSettingsForm(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&LLMSettingsForm{Provider: "openai", Model: "gpt-4o", Temperature: ptr(0.7)}))
	assert.NoError(t, v.Validate(&LLMSettingsForm{Provider: "anthropic", Model: "claude", Temperature: ptr(0.0)}))

	assert.Equal(t, "Please select a provider",
		messageOf(t, v.Validate(&LLMSettingsForm{Provider: "cohere", Model: "m", Temperature: ptr(0.5)})))
	assert.Equal(t, "Please select a model",
		messageOf(t, v.Validate(&LLMSettingsForm{Provider: "openai", Temperature: ptr(0.5)})))
	assert.Equal(t, "Temperature must be between 0 and 1",
		messageOf(t, v.Validate(&LLMSettingsForm{Provider: "openai", Model: "m", Temperature: ptr(1.5)})))
	assert.Equal(t, "Temperature must be between 0 and 1",
		messageOf(t, v.Validate(&LLMSettingsForm{Provider: "openai", Model: "m"})))
}

func TestCreateUserForm(t *testing.T) {
	v := New()

	form := &CreateUserForm{Username: "bob", Email: "bob@x.com", Password: "password1"}
	require.NoError(t, v.Validate(form))
	assert.True(t, form.Approved())

	assert.Equal(t, "Username must be at least 2 characters",
		messageOf(t, v.Validate(&CreateUserForm{Username: "b", Email: "bob@x.com", Password: "password1"})))
	assert.Equal(t, "Role must be admin or standard",
		messageOf(t, v.Validate(&CreateUserForm{Username: "bob", Email: "bob@x.com", Password: "password1", Role: "owner"})))

	form = &CreateUserForm{Username: "bob", Email: "bob@x.com", Password: "password1", IsApproved: ptr(false)}
	require.NoError(t, v.Validate(form))
	assert.False(t, form.Approved())
}

func TestResetPasswordForm(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&ResetPasswordForm{Password: "password1"}))
	assert.Equal(t, "Password must be at least 8 characters", messageOf(t, v.Validate(&ResetPasswordForm{Password: "short"})))
}

func TestLogQueryForm(t *testing.T) {
	v := New()

	form := &LogQueryForm{Search: "  api ", Level: "ERROR"}
	require.NoError(t, v.Validate(form))
	assert.Equal(t, "api", form.Search)
	assert.Equal(t, "error", form.Level)
	assert.Equal(t, LogSortNewest, form.Sort)

	empty := &LogQueryForm{}
	require.NoError(t, v.Validate(empty))
	assert.Equal(t, LogLevelAll, empty.Level)

	assert.Equal(t, "Please choose a log level", messageOf(t, v.Validate(&LogQueryForm{Level: "debug"})))
	assert.Equal(t, "Please choose newest or oldest first", messageOf(t, v.Validate(&LogQueryForm{Sort: "random"})))
}

func TestSavedSelectionForm(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&SavedSelectionForm{ResumeID: "1"}))
	assert.NoError(t, v.Validate(&SavedSelectionForm{JobID: "2"}))
	assert.NoError(t, v.Validate(&SavedSelectionForm{ResumeID: "1", JobID: "2"}))
	assert.Equal(t, "Please select a resume or a job description",
		messageOf(t, v.Validate(&SavedSelectionForm{ResumeID: "  "})))
}
