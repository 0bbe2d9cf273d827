package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"resumegenius/internal/users"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// GlobalRegistry is the registry used by the command line.
var GlobalRegistry = NewFormatterRegistry()

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "UserList", &UserListTextFormatter{})
	registry.RegisterFormatter("markdown", "UserList", &UserListMarkdownFormatter{})
	registry.RegisterFormatter("text", "User", &UserTextFormatter{})
	registry.RegisterFormatter("markdown", "User", &UserMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case []users.PublicUser:
		return "UserList"
	case users.PublicUser:
		return "User"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// UserListTextFormatter renders the user directory as an aligned table
type UserListTextFormatter struct{}

func (f *UserListTextFormatter) Format(data any) (string, error) {
	list, ok := data.([]users.PublicUser)
	if !ok {
		return "", fmt.Errorf("expected []users.PublicUser, got %T", data)
	}

	var output strings.Builder
	tw := tabwriter.NewWriter(&output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tSTATUS\tCREATED")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.Email, u.Role, status(u), u.CreatedAt.UTC().Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}
	fmt.Fprintf(&output, "\n%d users, %d pending approval\n", len(list), pending(list))
	return output.String(), nil
}

func (f *UserListTextFormatter) SupportedType() string {
	return "UserList"
}

// UserListMarkdownFormatter renders the user directory as a markdown table
type UserListMarkdownFormatter struct{}

func (f *UserListMarkdownFormatter) Format(data any) (string, error) {
	list, ok := data.([]users.PublicUser)
	if !ok {
		return "", fmt.Errorf("expected []users.PublicUser, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Users\n\n")
	output.WriteString("| ID | Username | Email | Role | Status | Created |\n")
	output.WriteString("|----|----------|-------|------|--------|---------|\n")
	for _, u := range list {
		fmt.Fprintf(&output, "| %s | %s | %s | %s | %s | %s |\n",
			u.ID, u.Username, u.Email, u.Role, status(u), u.CreatedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&output, "\n**Pending approval:** %d\n", pending(list))
	return output.String(), nil
}

func (f *UserListMarkdownFormatter) SupportedType() string {
	return "UserList"
}

// UserTextFormatter renders one account
type UserTextFormatter struct{}

func (f *UserTextFormatter) Format(data any) (string, error) {
	u, ok := data.(users.PublicUser)
	if !ok {
		return "", fmt.Errorf("expected users.PublicUser, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== USER ===\n")
	fmt.Fprintf(&output, "ID:       %s\n", u.ID)
	fmt.Fprintf(&output, "Username: %s\n", u.Username)
	fmt.Fprintf(&output, "Email:    %s\n", u.Email)
	fmt.Fprintf(&output, "Role:     %s\n", u.Role)
	fmt.Fprintf(&output, "Status:   %s\n", status(u))
	fmt.Fprintf(&output, "Created:  %s\n", u.CreatedAt.UTC().Format(time.RFC3339))
	return output.String(), nil
}

func (f *UserTextFormatter) SupportedType() string {
	return "User"
}

// UserMarkdownFormatter renders one account as a markdown list
type UserMarkdownFormatter struct{}

func (f *UserMarkdownFormatter) Format(data any) (string, error) {
	u, ok := data.(users.PublicUser)
	if !ok {
		return "", fmt.Errorf("expected users.PublicUser, got %T", data)
	}

	var output strings.Builder
	fmt.Fprintf(&output, "## %s\n\n", u.Username)
	fmt.Fprintf(&output, "- **ID:** %s\n", u.ID)
	fmt.Fprintf(&output, "- **Email:** %s\n", u.Email)
	fmt.Fprintf(&output, "- **Role:** %s\n", u.Role)
	fmt.Fprintf(&output, "- **Status:** %s\n", status(u))
	fmt.Fprintf(&output, "- **Created:** %s\n", u.CreatedAt.UTC().Format(time.RFC3339))
	return output.String(), nil
}

func (f *UserMarkdownFormatter) SupportedType() string {
	return "User"
}

func status(u users.PublicUser) string {
	if u.IsApproved {
		return "approved"
	}
	return "pending"
}

func pending(list []users.PublicUser) int {
	n := 0
	for _, u := range list {
		if !u.IsApproved {
			n++
		}
	}
	return n
}
