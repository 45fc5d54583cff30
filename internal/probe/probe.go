// Package probe defines the in-page accessibility probe: the script evaluated
// in page context and the typed result it produces.
//
// The probe only collects raw facts about the DOM (missing attributes, bounding
// boxes, landmark presence). All judgment lives in the accessibility package so
// the heuristics stay pure and testable without a browser.
package probe

// ElementRef identifies one DOM element in probe output: a short locator
// (tag plus src/id/name when available) and optional visible text.
type ElementRef struct {
	Ref  string `json:"ref"`
	Text string `json:"text,omitempty"`
}

// TargetRef is an interactive element with its rendered bounding box.
type TargetRef struct {
	Ref    string  `json:"ref"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Result is the typed DOM probe output, decoded from the script's JSON return
// value. A zero Result is a valid "nothing found" state.
type Result struct {
	ImagesMissingAlt  []ElementRef `json:"imagesMissingAlt"`
	SmallTargets      []TargetRef  `json:"smallTargets"`
	UnlabeledControls []ElementRef `json:"unlabeledControls"`
	HasMain           bool         `json:"hasMain"`
	HasNav            bool         `json:"hasNav"`
	HeadingCount      int          `json:"headingCount"`
}

// Script is evaluated in page context and returns JSON matching Result.
//
// Bounding boxes are measured for every interactive element regardless of
// device; the mobile-only touch-target rule is applied by the heuristic
// engine, not here, so the same snapshot feeds every rule deterministically.
const Script = `(() => {
  const ref = (el) => {
    const tag = el.tagName.toLowerCase();
    if (el.id) return tag + '#' + el.id;
    if (el.src) return tag + '[src=' + el.src + ']';
    if (el.name) return tag + '[name=' + el.name + ']';
    return tag;
  };
  const text = (el) => (el.textContent || '').trim().slice(0, 80);

  const imagesMissingAlt = [];
  for (const img of document.querySelectorAll('img')) {
    if (!img.hasAttribute('alt') && !img.getAttribute('aria-label')) {
      imagesMissingAlt.push({ ref: ref(img) });
    }
  }

  const smallTargets = [];
  const interactive = document.querySelectorAll(
    'button, a, input, select, [role="button"]');
  for (const el of interactive) {
    const box = el.getBoundingClientRect();
    if (box.width === 0 && box.height === 0) continue;
    smallTargets.push({ ref: ref(el), width: box.width, height: box.height });
  }

  const unlabeledControls = [];
  for (const el of document.querySelectorAll('input, select, textarea')) {
    if (el.type === 'hidden') continue;
    const labelled =
      (el.id && document.querySelector('label[for="' + el.id + '"]')) ||
      el.getAttribute('aria-label') ||
      el.getAttribute('aria-labelledby');
    if (!labelled) unlabeledControls.push({ ref: ref(el), text: text(el) });
  }

  return {
    imagesMissingAlt: imagesMissingAlt,
    smallTargets: smallTargets,
    unlabeledControls: unlabeledControls,
    hasMain: !!document.querySelector('main, [role="main"]'),
    hasNav: !!document.querySelector('nav, [role="navigation"]'),
    headingCount: document.querySelectorAll('h1,h2,h3,h4,h5,h6').length,
  };
})()`
