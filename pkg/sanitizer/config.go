// Package sanitizer reduces article HTML to a small, link-safe tree that can be
// rendered for any compatibility tier.
package sanitizer

// Config defines the removal and whitelist rules for the sanitizer.
type Config struct {
	// RemoveTags are elements that never carry reader content.
	RemoveTags []string `json:"remove_tags"`

	// AdToken removes elements whose class list contains it as a token or
	// whose id contains it as a substring.
	AdToken string `json:"ad_token"`

	// EmptyExempt are elements kept even when they have no text or children.
	EmptyExempt []string `json:"empty_exempt"`

	// AllowedAttrs maps tag -> attributes that survive stripping.
	// Tags not listed keep no attributes.
	AllowedAttrs map[string][]string `json:"allowed_attrs"`

	// ImagePlaceholder prefixes the alt text of images replaced for
	// the ultra retro tier.
	ImagePlaceholder string `json:"image_placeholder"`

	// ImageFallback is used when an image has no alt text.
	ImageFallback string `json:"image_fallback"`

	// Debug logs every removal.
	Debug bool `json:"debug"`
}

// DefaultConfig returns the rules used when serving articles.
func DefaultConfig() *Config {
	return &Config{
		RemoveTags: []string{
			"script", "style", "nav", "footer", "aside", "form", "header", "iframe",
		},
		AdToken:     "ad",
		EmptyExempt: []string{"img", "br", "hr"},
		AllowedAttrs: map[string][]string{
			"a":    {"href", "title"},
			"pre":  {},
			"code": {},
		},
		ImagePlaceholder: "Image",
		ImageFallback:    "Image",
	}
}

// allowed reports whether attr survives on tag.
func (c *Config) allowed(tag, attr string) bool {
	for _, a := range c.AllowedAttrs[tag] {
		if a == attr {
			return true
		}
	}
	return false
}

func (c *Config) exempt(tag string) bool {
	for _, t := range c.EmptyExempt {
		if t == tag {
			return true
		}
	}
	return false
}
