// Package update checks GitHub for new IronOS firmware releases.
package update

import (
	"context"
	_ "embed" // Used to embed version for use with user agent
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/pinecil-go/pinecil/internal/log"
)

var (
	//go:embed version.txt
	libraryVersion string
)

// LatestReleaseURL is the GitHub API endpoint for the newest published IronOS release.
const LatestReleaseURL = "https://api.github.com/repos/Ralim/IronOS/releases/latest"

// maxResponseLength bounds the release document; release notes are a few kilobytes.
const maxResponseLength = 1 << 20

// ErrUpdate is wrapped by every error returned from Checker.LatestRelease.
var ErrUpdate = errors.New("failed to fetch latest IronOS release")

func buildUserAgent(app string) string {
	library := strings.TrimSpace("pinecil-go/" + libraryVersion)
	if app != "" {
		return fmt.Sprintf("%s %s", app, library)
	}
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return library
	}
	path := strings.Split(build.Path, "/")
	app = path[len(path)-1]
	if app == "" {
		return library
	}
	if build.Main.Version != "(devel)" && build.Main.Version != "" {
		app = fmt.Sprintf("%s/%s", app, build.Main.Version)
	}
	return fmt.Sprintf("%s %s", app, library)
}

// Release describes a published IronOS release.
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
	Body    string `json:"body"`
}

// GitHub omits nothing on success, so a missing key indicates an error document such as a
// rate-limit notice.
type releasePayload struct {
	TagName *string `json:"tag_name"`
	Name    *string `json:"name"`
	HTMLURL *string `json:"html_url"`
	Body    *string `json:"body"`
}

// Checker fetches release metadata. The zero value is not usable; call NewChecker.
type Checker struct {
	URL       string
	UserAgent string
	// Token is an optional GitHub API token. Unauthenticated requests are limited to 60 per hour.
	Token  string
	Client *http.Client
}

// NewChecker returns a Checker for the official IronOS repository. The userAgent may be empty.
func NewChecker(userAgent, token string) *Checker {
	return &Checker{
		URL:       LatestReleaseURL,
		UserAgent: buildUserAgent(userAgent),
		Token:     token,
		Client:    &http.Client{},
	}
}

// LatestRelease returns the newest IronOS release.
func (c *Checker) LatestRelease(ctx context.Context) (*Release, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error constructing request: %s", ErrUpdate, err)
	}
	log.Debug("Requesting %s...", c.URL)
	request.Header.Set("Accept", "application/vnd.github+json")
	request.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		request.Header.Set("Authorization", "Bearer "+c.Token)
	}

	response, err := c.Client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpdate, err)
	}
	defer response.Body.Close()

	reader := io.LimitedReader{R: response.Body, N: maxResponseLength}
	body, err := io.ReadAll(&reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpdate, err)
	}
	if response.StatusCode != http.StatusOK {
		log.Debug("Received: %s", body)
		return nil, fmt.Errorf("%w: http error from %s: %s", ErrUpdate, c.URL, response.Status)
	}

	var payload releasePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %s", ErrUpdate, err)
	}
	if payload.TagName == nil || payload.Name == nil || payload.HTMLURL == nil || payload.Body == nil {
		return nil, fmt.Errorf("%w: response is missing release fields", ErrUpdate)
	}
	return &Release{
		TagName: *payload.TagName,
		Name:    *payload.Name,
		HTMLURL: *payload.HTMLURL,
		Body:    *payload.Body,
	}, nil
}

// parseVersion extracts the numeric components of strings such as "v2.22", "2.22.1" or
// "v2.21 Dec 2023".
func parseVersion(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	if i := strings.IndexFunc(s, func(r rune) bool { return r != '.' && (r < '0' || r > '9') }); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return nil, fmt.Errorf("invalid version %q", s)
	}
	var parts []int
	for _, field := range strings.Split(s, ".") {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid version component %q", field)
		}
		parts = append(parts, n)
	}
	return parts, nil
}

// UpdateAvailable reports whether release is newer than the firmware build string read from the
// iron.
func UpdateAvailable(build string, release *Release) (bool, error) {
	current, err := parseVersion(build)
	if err != nil {
		return false, fmt.Errorf("build %q: %w", build, err)
	}
	latest, err := parseVersion(release.TagName)
	if err != nil {
		return false, fmt.Errorf("release %q: %w", release.TagName, err)
	}
	for i := 0; i < max(len(current), len(latest)); i++ {
		var a, b int
		if i < len(current) {
			a = current[i]
		}
		if i < len(latest) {
			b = latest[i]
		}
		if a != b {
			return b > a, nil
		}
	}
	return false, nil
}
