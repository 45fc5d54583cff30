// Package device defines the viewport/user-agent profiles a run captures.
//
// The profile list is fixed for the lifetime of a run. Downstream matching
// (capture to evaluation, before-run to after-run) aligns by profile name,
// while report ordering follows registry order, so both the order and the
// names must be stable across a run.
package device

import "fmt"

// Profile describes one target device: viewport dimensions, whether it is
// treated as a mobile device, and an optional user-agent override.
type Profile struct {
	Name      string `yaml:"name" json:"name"`
	Width     int    `yaml:"width" json:"width"`
	Height    int    `yaml:"height" json:"height"`
	Mobile    bool   `yaml:"mobile" json:"mobile"`
	UserAgent string `yaml:"user_agent" json:"user_agent,omitempty"`
}

// Resolution returns the display label for the profile's viewport, e.g. "375x812".
func (p Profile) Resolution() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}

const mobileUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

// DefaultProfiles returns the built-in device table in capture order.
func DefaultProfiles() []Profile {
	return []Profile{
		{Name: "mobile", Width: 375, Height: 812, Mobile: true, UserAgent: mobileUserAgent},
		{Name: "tablet", Width: 768, Height: 1024, Mobile: true},
		{Name: "laptop", Width: 1366, Height: 768},
		{Name: "desktop", Width: 1920, Height: 1080},
	}
}

// Registry holds the ordered profile list for a run.
type Registry struct {
	profiles []Profile
}

// NewRegistry creates a registry from the given profiles.
// A nil or empty list falls back to DefaultProfiles.
func NewRegistry(profiles []Profile) *Registry {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}
	copied := make([]Profile, len(profiles))
	copy(copied, profiles)
	return &Registry{profiles: copied}
}

// Profiles returns the profiles in registry order.
// The returned slice is a copy; callers cannot mutate registry state.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Lookup finds a profile by name.
func (r *Registry) Lookup(name string) (Profile, bool) {
	for _, p := range r.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Len returns the number of configured profiles.
func (r *Registry) Len() int {
	return len(r.profiles)
}
