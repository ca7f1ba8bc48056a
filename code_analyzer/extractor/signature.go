package extractor

import (
	"fmt"
	"strings"
)

// Kind identifies which declaration a Signature describes.
type Kind int

const (
	KindClass Kind = iota + 1
	KindFunction
	KindMethod
	KindArrowFunction
	KindFunctionExpression

	KindClassSelector
	KindIDSelector
	KindElementSelector
	KindKeyframe
	KindCustomProperty
	KindAtRule
)

var kindNames = map[Kind]string{
	KindClass:              "class",
	KindFunction:           "function",
	KindMethod:             "method",
	KindArrowFunction:      "arrow_function",
	KindFunctionExpression: "function_expression",
	KindClassSelector:      "class_selector",
	KindIDSelector:         "id_selector",
	KindElementSelector:    "element_selector",
	KindKeyframe:           "keyframe",
	KindCustomProperty:     "custom_property",
	KindAtRule:             "at_rule",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Signature is a classified declaration. Params is only meaningful for the
// script kinds that take a parameter list.
type Signature struct {
	Kind   Kind
	Name   string
	Params string
}

// Render returns the canonical one-line form of s.
func (s Signature) Render() string {
	switch s.Kind {
	case KindClass:
		return "class " + s.Name
	case KindFunction:
		return "function " + s.Name + s.Params
	case KindMethod:
		return "method " + s.Name + s.Params
	case KindArrowFunction:
		return fmt.Sprintf("const %s = %s =>", s.Name, s.Params)
	case KindFunctionExpression:
		return fmt.Sprintf("const %s = function %s", s.Name, s.Params)
	case KindClassSelector:
		return "." + strings.TrimLeft(s.Name, ".")
	case KindIDSelector:
		return "#" + strings.TrimLeft(s.Name, "#")
	case KindKeyframe:
		return "@keyframes " + s.Name
	case KindElementSelector, KindCustomProperty, KindAtRule:
		return s.Name
	default:
		return s.Name
	}
}
