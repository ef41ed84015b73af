package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/asaskevich/govalidator"
	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// Placeholder is returned instead of a price when the caller may not see it.
	Placeholder = "-"
	// DefaultCurrency is used when a code cannot be resolved.
	DefaultCurrency = "USD"
	// DefaultFractionDigits is the precision requested when none is given.
	DefaultFractionDigits = 4

	// minTrimmedDigits is the floor for trailing zero trimming.
	minTrimmedDigits = 2
)

// ErrInvalidAmount is returned when an amount is neither numeric nor a numeric string.
var ErrInvalidAmount = errors.New("amount is not numeric")

// suffixLanguages place the symbol after the numeral ("1.234,50 €").
var suffixLanguages = map[string]bool{
	"de": true, "fr": true, "es": true, "it": true, "pt": true,
	"nl": true, "sv": true, "pl": true, "ru": true,
}

// Config is the process-wide formatting setup.
type Config struct {
	// Locale used when a call does not supply one. Defaults to en-US.
	Locale language.Tag
	// DefaultCurrency replaces unknown or invalid codes. Defaults to USD.
	DefaultCurrency string
	// Permission required to see prices. Defaults to [DefaultPermission].
	Permission string
}

// Options tune a single Format call.
type Options struct {
	// Locale overrides the formatter locale when not the zero tag.
	Locale language.Tag
	// FractionDigits is the precision requested before zero trimming.
	FractionDigits int
	// SkipAuthorization formats even when the caller lacks the pricing permission.
	SkipAuthorization bool
}

// DefaultOptions returns options with [DefaultFractionDigits] and authorization on.
func DefaultOptions() Options {
	return Options{FractionDigits: DefaultFractionDigits}
}

// Formatter renders amounts as locale aware currency strings.
type Formatter struct {
	locale     language.Tag
	fallback   xcurrency.Unit
	permission string
}

// New builds a Formatter from cfg.
func New(cfg Config) (*Formatter, error) {
	if cfg.Locale == language.Und {
		cfg.Locale = language.AmericanEnglish
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = DefaultCurrency
	}
	if cfg.Permission == "" {
		cfg.Permission = DefaultPermission
	}
	fallback, ok := parseISO(Normalize(cfg.DefaultCurrency))
	if !ok {
		return nil, fmt.Errorf("invalid default currency %q", cfg.DefaultCurrency)
	}
	return &Formatter{
		locale:     cfg.Locale,
		fallback:   fallback,
		permission: cfg.Permission,
	}, nil
}

// MustNew is like [New] but panics on error.
func MustNew(cfg Config) *Formatter {
	f, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return f
}

// LocaleFor builds a tag from a language and region pair such as ("en", "us").
// Unparseable input yields en-US.
func LocaleFor(lang, region string) language.Tag {
	s := strings.ToLower(strings.TrimSpace(lang))
	if r := strings.TrimSpace(region); r != "" {
		s += "-" + strings.ToUpper(r)
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// Locale returns the formatter's default locale.
func (f *Formatter) Locale() language.Tag {
	return f.locale
}

// Resolve normalizes code and falls back to the configured default currency
// when the result is not a known ISO 4217 code.
func (f *Formatter) Resolve(code string) xcurrency.Unit {
	if u, ok := parseISO(Normalize(code)); ok {
		return u
	}
	return f.fallback
}

// Format renders amount in the currency named by code.
//
// amount may be any Go numeric type, a [json.Number] or a numeric string.
func (f *Formatter) Format(ctx context.Context, amount any, code string, opts Options) (string, error) {
	if !opts.SkipAuthorization && !AuthorizerFrom(ctx).HasPermission(ctx, f.permission) {
		return Placeholder, nil
	}

	value, err := toFloat(amount)
	if err != nil {
		return "", err
	}

	locale := f.locale
	if opts.Locale != language.Und {
		locale = opts.Locale
	}
	unit := f.Resolve(code)
	p := message.NewPrinter(locale)

	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	value = roundHalfAway(value, max(opts.FractionDigits, minTrimmedDigits))
	digits := trimmedDigits(value, opts.FractionDigits)
	num := p.Sprint(number.Decimal(value,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))

	sym := p.Sprint(xcurrency.Symbol(unit))
	if sym == "" {
		sym = unit.String()
	}

	base, _ := locale.Base()
	switch {
	case suffixLanguages[base.String()]:
		return sign + num + " " + sym, nil
	case letterCount(sym) >= 2:
		return sign + sym + " " + num, nil
	default:
		return sign + sym + num, nil
	}
}

func parseISO(code string) (xcurrency.Unit, bool) {
	if !govalidator.IsISO4217(code) {
		return xcurrency.Unit{}, false
	}
	u, err := xcurrency.ParseISO(code)
	if err != nil {
		return xcurrency.Unit{}, false
	}
	return u, true
}

// roundHalfAway rounds a non-negative value to digits fraction digits, ties
// away from zero. Ties are judged on the shortest decimal form of value, so
// 1.005 rounds to 1.01 even though its binary value is slightly below.
func roundHalfAway(value float64, digits int) float64 {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 <= digits {
		return value
	}
	scale := math.Pow10(digits)
	n, err := strconv.ParseInt(s[:dot]+s[dot+1:dot+1+digits], 10, 64)
	if err != nil {
		return math.Round(value*scale) / scale
	}
	if s[dot+1+digits] >= '5' {
		n++
	}
	return float64(n) / scale
}

// trimmedDigits returns how many fraction digits to show: the requested
// precision with trailing zeros removed, never below two.
func trimmedDigits(value float64, requested int) int {
	if requested <= minTrimmedDigits {
		return minTrimmedDigits
	}
	s := strconv.FormatFloat(value, 'f', requested, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return minTrimmedDigits
	}
	frac := s[dot+1:]
	n := len(frac)
	for n > minTrimmedDigits && frac[n-1] == '0' {
		n--
	}
	return n
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, x.String())
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, x)
		}
		f = n
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidAmount, v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, f)
	}
	return f, nil
}
