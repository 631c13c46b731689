// Package compat resolves the compatibility tier of a client and carries the
// per-request preferences that must survive navigation.
package compat

import (
	"strings"
)

// Tier is a client capability class. It decides how aggressively content is
// sanitised and which markup dialect is rendered.
type Tier int

const (
	Modern Tier = iota
	Retro
	UltraRetro
	Wap
)

// Tiers lists every tier in display order.
var Tiers = []Tier{Modern, Retro, UltraRetro, Wap}

// String returns the tier name as used in the mode parameter.
func (t Tier) String() string {
	switch t {
	case Modern:
		return "modern"
	case Retro:
		return "retro"
	case UltraRetro:
		return "ultra_retro"
	case Wap:
		return "wap"
	}
	return "unknown"
}

// Label returns a human-readable tier name for forms.
func (t Tier) Label() string {
	switch t {
	case Modern:
		return "Modern"
	case Retro:
		return "Retro"
	case UltraRetro:
		return "Ultra-Retro"
	case Wap:
		return "WAP"
	}
	return "Unknown"
}

// ParseTier maps a mode parameter to a tier.
func ParseTier(name string) (Tier, bool) {
	for _, t := range Tiers {
		if t.String() == name {
			return t, true
		}
	}
	return Modern, false
}

// Signatures of browsers that can handle neither CSS nor images.
var ultraRetroSignatures = []string{
	"netscape/4", "msie 4", "msie 3", "msie 2",
}

// Signatures of browsers and platforms that get simplified HTML.
var retroSignatures = []string{
	"msie 6", "msie 5", "netscape6", "mac_powerpc", "beos", "amiga", "atari",
}

// Classify determines the tier for a User-Agent string. A valid override
// always wins; an unknown client is treated as modern.
func Classify(userAgent, override string) Tier {
	if t, ok := ParseTier(override); ok {
		return t
	}
	if userAgent == "" {
		return Modern
	}

	ua := strings.ToLower(userAgent)
	if containsAny(ua, ultraRetroSignatures) {
		return UltraRetro
	}
	if containsAny(ua, retroSignatures) {
		return Retro
	}
	return Modern
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
