package transform

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Gobd/remap/currency"
	"golang.org/x/text/language"
)

// DefaultRedaction replaces values passed through redactString.
const DefaultRedaction = "{REDACTED}"

// Parameter names understood by the built-in transforms.
const (
	ParamCurrencyCode  = "currencyCode"
	ParamDecimalPlaces = "decimalPlaces"
	ParamLocale        = "locale"
	ParamDateFormat    = "dateFormat"
	ParamSearchValue   = "searchValue"
	ParamReplaceValue  = "replaceValue"
)

func formatCurrency(f *currency.Formatter) Func {
	return func(ctx context.Context, value any, params Params) (any, error) {
		opts := currency.Options{
			FractionDigits: params.Int(ParamDecimalPlaces, currency.DefaultFractionDigits),
		}
		if loc := params.String(ParamLocale, ""); loc != "" {
			if tag, err := language.Parse(loc); err == nil {
				opts.Locale = tag
			}
		}
		s, err := f.Format(ctx, value, params.String(ParamCurrencyCode, ""), opts)
		if err != nil {
			return value, fmt.Errorf("formatCurrency: %w: %w", ErrShapeMismatch, err)
		}
		return s, nil
	}
}

func toUpperCase(_ context.Context, value any, _ Params) (any, error) {
	s, ok := value.(string)
	if !ok {
		return value, fmt.Errorf("toUpperCase: %w: %T", ErrShapeMismatch, value)
	}
	return strings.ToUpper(s), nil
}

func replaceString(_ context.Context, value any, params Params) (any, error) {
	search := params.String(ParamSearchValue, "")
	if search == "" || !params.Has(ParamReplaceValue) {
		return value, fmt.Errorf("replaceString: %w: %q and %q are required", ErrMissingParam, ParamSearchValue, ParamReplaceValue)
	}
	s, ok := value.(string)
	if !ok {
		return value, fmt.Errorf("replaceString: %w: %T", ErrShapeMismatch, value)
	}
	replace := params.String(ParamReplaceValue, "")
	re, err := regexp.Compile(search)
	if err != nil {
		return strings.ReplaceAll(s, search, replace), nil
	}
	return re.ReplaceAllString(s, replace), nil
}

func redactString(_ context.Context, value any, params Params) (any, error) {
	if _, ok := value.(string); !ok {
		return value, fmt.Errorf("redactString: %w: %T", ErrShapeMismatch, value)
	}
	return params.String(ParamReplaceValue, DefaultRedaction), nil
}
