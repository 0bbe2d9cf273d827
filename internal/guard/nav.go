package guard

import "resumegenius/internal/users"

// NavItem is one sidebar entry.
type NavItem struct {
	Label     string `json:"label"`
	Path      string `json:"path"`
	Icon      string `json:"icon"`
	AdminOnly bool   `json:"adminOnly,omitempty"`
}

var navigationItems = []NavItem{
	{Label: "Dashboard", Path: PathDashboard, Icon: "home"},
	{Label: "My Resumes", Path: PathResumes, Icon: "file-text"},
	{Label: "Job Listings", Path: PathJobs, Icon: "briefcase"},
	{Label: "Tailored Resumes", Path: PathTailored, Icon: "file"},
	{Label: "Cover Letters", Path: PathCoverLetters, Icon: "mail"},
	{Label: "System Logs", Path: PathLogs, Icon: "bar-chart"},
	{Label: "Users", Path: PathAdminUsers, Icon: "users", AdminOnly: true},
	{Label: "Settings", Path: PathSettings, Icon: "settings"},
}

// Navigation returns the sidebar entries visible to user. Admin-only entries
// are hidden from everyone else. This is a display filter; the admin API
// enforces the role on its own.
func Navigation(user *users.PublicUser) []NavItem {
	isAdmin := user != nil && user.IsAdmin()
	out := make([]NavItem, 0, len(navigationItems))
	for _, item := range navigationItems {
		if item.AdminOnly && !isAdmin {
			continue
		}
		out = append(out, item)
	}
	return out
}
