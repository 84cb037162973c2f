package usecase

import "regexp"

// Verdict is the outcome of a safety check. A blocked verdict carries the
// category and pattern that matched.
type Verdict struct {
	Allowed         bool
	MatchedCategory string
	MatchedPattern  string
}

// safetyRule is one context-bound pattern in a category. Bare keywords are
// forbidden here: every pattern must bind the risky phrase to its directive
// context, otherwise ordinary supportive phrasing gets blocked.
type safetyRule struct {
	category string
	pattern  *regexp.Regexp
}

// Categories are evaluated in this order; the first match short-circuits.
var defaultSafetyRules = []safetyRule{
	// medical_advice: telling the user to change medication or diagnosis.
	{"medical_advice", regexp.MustCompile(`(?i)\byou (should|need to|must|have to) (stop|quit|skip|start) taking (your |the )?(medication|meds|pills|antidepressants)`)},
	{"medical_advice", regexp.MustCompile(`(?i)\b(double|increase|decrease|lower|skip) (your |the )?(dose|dosage)\b`)},
	{"medical_advice", regexp.MustCompile(`(?i)\byou don'?t (really )?need (your |the )?(medication|meds|therapy|therapist)`)},
	// harmful_content: diagnosis-plus-directive or self-harm encouragement.
	{"harmful_content", regexp.MustCompile(`(?i)\byou('re| are) (just |so |clearly )?(sick|ill|broken|crazy|insane|damaged)\b[^.!?]*\b(should|need to|must)\b`)},
	{"harmful_content", regexp.MustCompile(`(?i)\byou (should|deserve to) (hurt|harm|punish|starve) yourself`)},
	{"harmful_content", regexp.MustCompile(`(?i)\b(nobody|no one) (cares|would care|would notice|loves you)`)},
	{"harmful_content", regexp.MustCompile(`(?i)\b(everyone|the world) (would be|is) better off without you`)},
	// crisis_dismissal: minimizing language that shuts the user down.
	{"crisis_dismissal", regexp.MustCompile(`(?i)\bjust (get over|snap out of|move past) it\b`)},
	{"crisis_dismissal", regexp.MustCompile(`(?i)\b(stop|quit) being (so )?(dramatic|sensitive|negative|weak)`)},
	{"crisis_dismissal", regexp.MustCompile(`(?i)\bit'?s (all|just) in your head\b`)},
}

// SafetyFilter gates generated drafts before they are persisted.
//
// An earlier rule set matched single tokens ("you're", "sick") and blocked
// roughly 95% of ordinary supportive replies. Every rule change must keep the
// regression suites in safety_test.go green before shipping.
type SafetyFilter struct {
	rules []safetyRule
}

// NewSafetyFilter creates a filter with the default rule set.
func NewSafetyFilter() *SafetyFilter {
	return &SafetyFilter{rules: defaultSafetyRules}
}

// Check evaluates text against the rules in category order. The first match
// blocks; no match allows.
func (f *SafetyFilter) Check(text string) Verdict {
	for _, rule := range f.rules {
		if rule.pattern.MatchString(text) {
			return Verdict{
				Allowed:         false,
				MatchedCategory: rule.category,
				MatchedPattern:  rule.pattern.String(),
			}
		}
	}
	return Verdict{Allowed: true}
}
