// Package accessibility turns a DOM probe result into an ordered list of
// typed findings.
//
// The rule set is fixed and evaluated in a fixed order so that identical
// probe input always yields an identical finding list. Runs stay diffable
// across a before/after comparison precisely because nothing here is
// configurable at runtime.
package accessibility

import (
	"fmt"

	"github.com/dstanley/viewport/internal/probe"
)

// FindingKind enumerates the heuristic rules.
type FindingKind string

const (
	KindMissingAltText   FindingKind = "missing-alt-text"
	KindSmallTouchTarget FindingKind = "small-touch-target"
	KindMissingFormLabel FindingKind = "missing-form-label"
	KindMissingLandmarks FindingKind = "missing-landmarks"
	KindMissingHeadings  FindingKind = "missing-headings"
)

// Finding is one aggregated accessibility defect. A finding summarizes every
// element that triggered its rule; it is never emitted per-element and never
// emitted with a zero count.
//
// Landmark and heading findings describe document structure, not individual
// elements, so they never carry SampleElements.
type Finding struct {
	Kind           FindingKind `json:"kind"`
	Description    string      `json:"description"`
	SampleElements []string    `json:"sample_elements,omitempty"`
	SuggestedFix   string      `json:"suggested_fix,omitempty"`
}

const (
	// minTouchTarget is the minimum comfortable touch target edge in CSS pixels.
	minTouchTarget = 44

	// maxSamples bounds how many element identifiers a finding carries.
	maxSamples = 3

	// sampleTailLen is the retained suffix length of a sample identifier.
	// The suffix keeps the most specific part of long src URLs.
	sampleTailLen = 50
)

// Analyze applies the fixed rule set to a probe result. Pure and
// deterministic: identical input (including mobile) yields an identical,
// order-stable finding list. The touch-target rule only applies when mobile
// is true.
func Analyze(res *probe.Result, mobile bool) []Finding {
	if res == nil {
		return nil
	}

	var findings []Finding

	// Rule 1: images without alt text or an aria-label.
	if n := len(res.ImagesMissingAlt); n > 0 {
		samples := make([]string, 0, maxSamples)
		for _, el := range res.ImagesMissingAlt {
			if len(samples) == maxSamples {
				break
			}
			samples = append(samples, truncateTail(el.Ref, sampleTailLen))
		}
		findings = append(findings, Finding{
			Kind:           KindMissingAltText,
			Description:    fmt.Sprintf("%d %s missing alt text", n, plural(n, "image", "images")),
			SampleElements: samples,
			SuggestedFix:   "Add descriptive alt attributes to images, or alt=\"\" for purely decorative ones",
		})
	}

	// Rule 2: touch targets below 44x44, mobile viewports only.
	if mobile {
		var small []probe.TargetRef
		for _, tgt := range res.SmallTargets {
			if tgt.Width < minTouchTarget || tgt.Height < minTouchTarget {
				small = append(small, tgt)
			}
		}
		if n := len(small); n > 0 {
			samples := make([]string, 0, maxSamples)
			for _, tgt := range small {
				if len(samples) == maxSamples {
					break
				}
				samples = append(samples, truncateTail(tgt.Ref, sampleTailLen))
			}
			findings = append(findings, Finding{
				Kind: KindSmallTouchTarget,
				Description: fmt.Sprintf("%d interactive %s smaller than %dx%dpx",
					n, plural(n, "element", "elements"), minTouchTarget, minTouchTarget),
				SampleElements: samples,
				SuggestedFix:   fmt.Sprintf("Increase touch target size to at least %dx%dpx", minTouchTarget, minTouchTarget),
			})
		}
	}

	// Rule 3: form controls without a resolvable label.
	if n := len(res.UnlabeledControls); n > 0 {
		samples := make([]string, 0, maxSamples)
		for _, el := range res.UnlabeledControls {
			if len(samples) == maxSamples {
				break
			}
			samples = append(samples, truncateTail(el.Ref, sampleTailLen))
		}
		findings = append(findings, Finding{
			Kind:           KindMissingFormLabel,
			Description:    fmt.Sprintf("%d form %s without an accessible label", n, plural(n, "control", "controls")),
			SampleElements: samples,
			SuggestedFix:   "Associate a <label for=...> with each control, or add aria-label",
		})
	}

	// Rule 4: main or navigation landmark missing (either one triggers).
	if !res.HasMain || !res.HasNav {
		missing := ""
		switch {
		case !res.HasMain && !res.HasNav:
			missing = "main and navigation landmarks"
		case !res.HasMain:
			missing = "main landmark"
		default:
			missing = "navigation landmark"
		}
		findings = append(findings, Finding{
			Kind:         KindMissingLandmarks,
			Description:  fmt.Sprintf("page has no %s", missing),
			SuggestedFix: "Add <main> and <nav> elements (or role=\"main\"/role=\"navigation\")",
		})
	}

	// Rule 5: no headings anywhere in the document.
	if res.HeadingCount == 0 {
		findings = append(findings, Finding{
			Kind:         KindMissingHeadings,
			Description:  "page has no heading elements (h1-h6)",
			SuggestedFix: "Structure the page content with a heading hierarchy starting at h1",
		})
	}

	return findings
}

// truncateTail keeps the trailing maxLen characters of s. The tail is the
// informative end of long identifiers such as image src URLs.
func truncateTail(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[len(s)-maxLen:]
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}
