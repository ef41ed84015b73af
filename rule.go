package remap

import (
	"errors"
	"strings"

	"github.com/Gobd/remap/transform"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Rule moves, and optionally transforms, one field of a payload.
//
// SourceKey is a path such as "data.products[].unitSellPrice". TargetKey is a
// plain field name written on the object that holds the last SourceKey
// segment, so the example above writes beside unitSellPrice in each product.
type Rule struct {
	SourceKey         string           `json:"sourceKey" yaml:"sourceKey"`
	TargetKey         string           `json:"targetKey" yaml:"targetKey"`
	TransformFunction string           `json:"transformFunction,omitempty" yaml:"transformFunction,omitempty"`
	TransformParams   transform.Params `json:"transformParams,omitempty" yaml:"transformParams,omitempty"`
	RemoveSourceKey   bool             `json:"removeSourceKey,omitempty" yaml:"removeSourceKey,omitempty"`
}

// LastKey returns the field name addressed by the final SourceKey segment.
func (r Rule) LastKey() string {
	last := r.SourceKey[strings.LastIndexByte(r.SourceKey, '.')+1:]
	return strings.TrimSuffix(last, FanOut)
}

// Validate checks the rule's shape. Unknown transform names are not an error;
// they pass values through when applied.
func (r Rule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceKey, validation.Required, validation.By(validPath)),
		validation.Field(&r.TargetKey, validation.Required,
			validation.NewStringRule(isFieldName, "must be a plain field name")),
	)
}

// CurrencyRule builds a formatCurrency rule for code with the given precision.
func CurrencyRule(sourceKey, targetKey, code string, decimalPlaces int, removeSourceKey bool) Rule {
	return Rule{
		SourceKey:         sourceKey,
		TargetKey:         targetKey,
		TransformFunction: transform.FormatCurrency.String(),
		TransformParams: transform.Params{
			transform.ParamCurrencyCode:  code,
			transform.ParamDecimalPlaces: decimalPlaces,
		},
		RemoveSourceKey: removeSourceKey,
	}
}

func validPath(value any) error {
	path, _ := value.(string)
	for _, seg := range strings.Split(path, ".") {
		key := strings.TrimSuffix(seg, FanOut)
		if key == "" {
			return errors.New("must not contain empty segments")
		}
		if strings.ContainsAny(key, "[]") {
			return errors.New("[] is only allowed at the end of a segment")
		}
	}
	return nil
}

func isFieldName(s string) bool {
	return !strings.ContainsAny(s, ".[]")
}
