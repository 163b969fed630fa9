// Package profile canonicalizes lead profile references into fully-qualified
// URLs the browser worker can open.
package profile

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// platformSpec describes how one outreach platform forms profile URLs.
type platformSpec struct {
	// domains are the registrable domains accepted for absolute URLs.
	domains []string
	// template builds a canonical profile URL from a bare handle.
	template string
}

var platforms = map[string]platformSpec{
	"linkedin": {
		domains:  []string{"linkedin.com"},
		template: "https://www.linkedin.com/in/%s",
	},
	"x": {
		domains:  []string{"x.com", "twitter.com"},
		template: "https://x.com/%s",
	},
	"twitter": {
		domains:  []string{"x.com", "twitter.com"},
		template: "https://x.com/%s",
	},
	"instagram": {
		domains:  []string{"instagram.com"},
		template: "https://www.instagram.com/%s",
	},
}

// KnownPlatform returns true if the platform has a canonicalization rule.
func KnownPlatform(platform string) bool {
	_, ok := platforms[strings.ToLower(strings.TrimSpace(platform))]
	return ok
}

// CanonicalURL turns a profile reference into an absolute profile URL for the
// given platform. A bare handle (with or without a leading @) expands through
// the platform's URL template. An absolute URL is kept verbatim, but only
// when its registrable domain belongs to the platform; anything else is
// rejected so a lead cannot smuggle an off-platform URL into a job payload.
func CanonicalURL(platform, ref string) (string, error) {
	spec, ok := platforms[strings.ToLower(strings.TrimSpace(platform))]
	if !ok {
		return "", fmt.Errorf("unknown platform: %q", platform)
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty profile reference")
	}

	if strings.Contains(ref, "://") {
		return canonicalAbsolute(spec, ref)
	}

	handle := strings.TrimPrefix(ref, "@")
	if handle == "" || strings.ContainsAny(handle, "/? #") {
		return "", fmt.Errorf("invalid profile handle: %q", ref)
	}
	return fmt.Sprintf(spec.template, url.PathEscape(handle)), nil
}

func canonicalAbsolute(spec platformSpec, ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid profile url %q: %w", ref, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported profile url scheme: %q", u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", fmt.Errorf("invalid profile url host %q: %w", host, err)
	}
	for _, d := range spec.domains {
		if registrable == d {
			return u.String(), nil
		}
	}
	return "", fmt.Errorf("profile url host %q does not belong to the platform", host)
}
