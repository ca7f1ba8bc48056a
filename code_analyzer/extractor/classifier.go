package extractor

// Capture names used by the embedded query programs.
const (
	CaptureClassName    = "cname"
	CaptureFuncName     = "fname"
	CaptureFuncParams   = "fparams"
	CaptureMethodName   = "mname"
	CaptureMethodParams = "mparams"
	CaptureVarName      = "vname"
	CaptureVarParams    = "vparams"
	CaptureIsArrow      = "is_arrow"

	CaptureCSSClass     = "css_class"
	CaptureCSSID        = "css_id"
	CaptureCSSElement   = "css_element"
	CaptureKeyframeName = "keyframe_name"
	CaptureCSSProperty  = "css_property"
	CaptureAtRuleName   = "at_rule_name"
)

// Rule turns a capture group into a Signature once every name in Requires is
// present. Build receives a text accessor bound to the file's source.
type Rule struct {
	Requires []string
	Build    func(group CaptureGroup, text func(name string) string) Signature
}

// RuleSet is evaluated top to bottom; the first matching rule wins.
type RuleSet []Rule

// ScriptRules classifies matches from the javascript, typescript and
// typescript-with-jsx grammars.
var ScriptRules = RuleSet{
	{
		Requires: []string{CaptureClassName},
		Build: func(_ CaptureGroup, text func(string) string) Signature {
			return Signature{Kind: KindClass, Name: text(CaptureClassName)}
		},
	},
	{
		Requires: []string{CaptureFuncName, CaptureFuncParams},
		Build: func(_ CaptureGroup, text func(string) string) Signature {
			return Signature{Kind: KindFunction, Name: text(CaptureFuncName), Params: text(CaptureFuncParams)}
		},
	},
	{
		Requires: []string{CaptureMethodName, CaptureMethodParams},
		Build: func(_ CaptureGroup, text func(string) string) Signature {
			return Signature{Kind: KindMethod, Name: text(CaptureMethodName), Params: text(CaptureMethodParams)}
		},
	},
	{
		Requires: []string{CaptureVarName, CaptureVarParams},
		Build: func(group CaptureGroup, text func(string) string) Signature {
			kind := KindFunctionExpression
			if group.Has(CaptureIsArrow) {
				kind = KindArrowFunction
			}
			return Signature{Kind: kind, Name: text(CaptureVarName), Params: text(CaptureVarParams)}
		},
	},
}

// StyleRules classifies matches from the css grammar.
var StyleRules = RuleSet{
	nameRule(CaptureCSSClass, KindClassSelector),
	nameRule(CaptureCSSID, KindIDSelector),
	nameRule(CaptureCSSElement, KindElementSelector),
	nameRule(CaptureKeyframeName, KindKeyframe),
	nameRule(CaptureCSSProperty, KindCustomProperty),
	nameRule(CaptureAtRuleName, KindAtRule),
}

func nameRule(capture string, kind Kind) Rule {
	return Rule{
		Requires: []string{capture},
		Build: func(_ CaptureGroup, text func(string) string) Signature {
			return Signature{Kind: kind, Name: text(capture)}
		},
	}
}

// Classify returns the signature produced by the first rule whose required
// captures are all present in group. ok is false when no rule applies.
func (rules RuleSet) Classify(group CaptureGroup, source []byte) (sig Signature, ok bool) {
	text := func(name string) string {
		r, found := group.Get(name)
		if !found {
			return ""
		}
		return extractText(source, r)
	}
	for _, rule := range rules {
		if group.HasAll(rule.Requires...) {
			return rule.Build(group, text), true
		}
	}
	return Signature{}, false
}
