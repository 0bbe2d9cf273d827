package guard

import "strings"

// Client route paths.
const (
	PathRoot         = "/"
	PathAuth         = "/auth"
	PathDashboard    = "/dashboard"
	PathResumes      = "/resumes"
	PathResumesNew   = "/resumes/new"
	PathJobs         = "/jobs"
	PathJobsNew      = "/jobs/new"
	PathTailored     = "/tailored"
	PathTailoredNew  = "/tailored/new"
	PathCoverLetters = "/coverletters"
	PathAdminUsers   = "/admin/users"
	PathSettings     = "/settings"
	PathLogs         = "/logs"
	PathProfile      = "/profile"
)

var protectedRoutes = map[string]bool{
	PathDashboard:    true,
	PathResumes:      true,
	PathResumesNew:   true,
	PathJobs:         true,
	PathJobsNew:      true,
	PathTailored:     true,
	PathTailoredNew:  true,
	PathCoverLetters: true,
	PathAdminUsers:   true,
	PathSettings:     true,
	PathLogs:         true,
	PathProfile:      true,
}

// IsProtected reports whether path is a known route that requires sign-in.
func IsProtected(path string) bool {
	return protectedRoutes[normalize(path)]
}

// DecisionKind is what a client should do for a route.
type DecisionKind string

const (
	DecisionLoading  DecisionKind = "loading"
	DecisionRedirect DecisionKind = "redirect"
	DecisionRender   DecisionKind = "render"
	DecisionNotFound DecisionKind = "not_found"
)

// Decision is the guard outcome for one route.
type Decision struct {
	Kind   DecisionKind `json:"kind"`
	Path   string       `json:"path"`
	Target string       `json:"target,omitempty"`
}

// Decide maps an auth state and a client path to a Decision. While the state is
// loading nothing else is decided, not even the redirect for /. Signed-out clients are sent to /auth from
// every route except /auth itself; signed-in clients are sent from /auth to the
// dashboard and get a not-found for unknown routes.
func Decide(state AuthState, path string) Decision {
	p := normalize(path)

	if state.IsLoading {
		return Decision{Kind: DecisionLoading, Path: p}
	}
	if p == PathRoot {
		return Decision{Kind: DecisionRedirect, Path: p, Target: PathDashboard}
	}

	if !state.IsAuthenticated {
		if p == PathAuth {
			return Decision{Kind: DecisionRender, Path: p}
		}
		return Decision{Kind: DecisionRedirect, Path: p, Target: PathAuth}
	}

	switch {
	case p == PathAuth:
		return Decision{Kind: DecisionRedirect, Path: p, Target: PathDashboard}
	case IsProtected(p):
		return Decision{Kind: DecisionRender, Path: p}
	default:
		return Decision{Kind: DecisionNotFound, Path: p}
	}
}

func normalize(path string) string {
	if path == "" {
		return PathRoot
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathRoot
		}
	}
	return path
}
