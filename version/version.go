// Package version holds the build version and checks GitHub for newer
// releases of the toolbox.
package version

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/github"
)

// Version is the toolbox version this binary provisions.
const Version = "0.6.7"

const (
	repoOwner = "vaila-multimodaltoolbox"
	repoName  = "vaila"
)

// Banner returns the one-line version banner.
func Banner() string {
	return fmt.Sprintf("vailá multimodal toolbox %s", Version)
}

// Checker queries GitHub for the latest release. BaseURL is overridable
// for tests; empty means api.github.com.
type Checker struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Latest returns the latest release tag, without a leading "v".
func (c Checker) Latest(ctx context.Context) (string, error) {
	client := github.NewClient(c.HTTPClient)
	if c.BaseURL != "" {
		base, err := url.Parse(c.BaseURL)
		if err != nil {
			return "", err
		}
		client.BaseURL = base
	}
	release, _, err := client.Repositories.GetLatestRelease(ctx, repoOwner, repoName)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(release.GetTagName(), "v"), nil
}

// IsNewer reports whether latest is ahead of the running version, by
// numeric comparison of dotted components.
func IsNewer(latest string) bool {
	return compare(latest, Version) > 0
}

func compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av = atoi(as[i])
		}
		if i < len(bs) {
			bv = atoi(bs[i])
		}
		if av != bv {
			if av > bv {
				return 1
			}
			return -1
		}
	}
	return 0
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
