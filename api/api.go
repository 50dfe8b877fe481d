// Package api holds the client-side configuration for talking to the
// JobTrack backend: base URL resolution, endpoint construction, and the
// header and error conventions shared by every request.
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jobtrackapp/go-jobtrack-client/internal/config"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the local development backend.
const DefaultBaseURL = "http://127.0.0.1:8000"

// Doer executes a single HTTP request. *http.Client satisfies it; tests
// substitute clients pointed at httptest servers.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResolveBaseURL picks the backend base URL, in priority order:
//  1. an explicitly configured URL (JOBTRACK_API_URL)
//  2. the deployment origin (JOBTRACK_ORIGIN) so a reverse proxy on the
//     same origin can route /api requests
//  3. the local development default
func ResolveBaseURL(cfg config.APIConfig) string {
	if url := cfg.GetAPIBaseURL(); url != "" {
		return url
	}
	if origin := cfg.GetOrigin(); origin != "" {
		return origin
	}
	log.Debug().Msgf("JOBTRACK_API_URL is not set, using default %s", DefaultBaseURL)
	return DefaultBaseURL
}

// Endpoints builds the backend URLs from a resolved base URL.
type Endpoints struct {
	base string
}

func NewEndpoints(baseURL string) Endpoints {
	return Endpoints{base: strings.TrimRight(baseURL, "/")}
}

// Authentication

func (e Endpoints) Register() string { return e.base + "/api/auth/register/" }
func (e Endpoints) Login() string    { return e.base + "/api/auth/login/" }
func (e Endpoints) Logout() string   { return e.base + "/api/auth/logout/" }
func (e Endpoints) User() string     { return e.base + "/api/auth/user/" }
func (e Endpoints) Refresh() string  { return e.base + "/api/auth/refresh/" }

// Job applications

func (e Endpoints) JobStats() string           { return e.base + "/api/job-stats/" }
func (e Endpoints) RecentApplications() string { return e.base + "/api/recent-applications/" }
func (e Endpoints) UpcomingInterviews() string { return e.base + "/api/upcoming-interviews/" }
func (e Endpoints) AddApplication() string     { return e.base + "/api/add-job-application/" }

func (e Endpoints) Application(id int64) string {
	return fmt.Sprintf("%s/api/applications/%d/", e.base, id)
}

func (e Endpoints) UpdateApplication(id int64) string {
	return fmt.Sprintf("%s/api/applications/%d/update/", e.base, id)
}

func (e Endpoints) DeleteApplication(id int64) string {
	return fmt.Sprintf("%s/api/applications/%d/delete/", e.base, id)
}

// MediaBase is the prefix for server-relative media paths such as
// uploaded resumes.
func (e Endpoints) MediaBase() string { return e.base }

// Support

func (e Endpoints) Support() string { return e.base + "/api/support/" }
