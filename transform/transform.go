package transform

import (
	"context"
	"fmt"
	"slices"

	"github.com/Gobd/remap/currency"
)

// Func derives a new value from value. It returns [NoValue] when nothing
// should be written. A non-nil error is a diagnostic: the returned value is
// still what the caller should use.
type Func func(ctx context.Context, value any, params Params) (any, error)

type noValue struct{}

// NoValue is the result a [Func] returns when the target must not be written.
var NoValue any = noValue{}

// IsNoValue reports whether v is [NoValue].
func IsNoValue(v any) bool {
	_, ok := v.(noValue)
	return ok
}

// Kind enumerates the built-in transforms.
type Kind int

const (
	FormatCurrency Kind = iota + 1
	ToUpperCase
	FormatDate
	ReplaceString
	RedactString
)

var kindNames = map[Kind]string{
	FormatCurrency: "formatCurrency",
	ToUpperCase:    "toUpperCase",
	FormatDate:     "formatDate",
	ReplaceString:  "replaceString",
	RedactString:   "redactString",
}

// Kinds lists the built-in transforms in declaration order.
func Kinds() []Kind {
	return []Kind{FormatCurrency, ToUpperCase, FormatDate, ReplaceString, RedactString}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the built-in kind registered under name.
func ParseKind(name string) (Kind, bool) {
	for k, s := range kindNames {
		if s == name {
			return k, true
		}
	}
	return 0, false
}

// Registry maps transform names to functions. It is immutable once built and
// safe for concurrent use.
type Registry struct {
	funcs map[string]Func
}

type registryConfig struct {
	formatter *currency.Formatter
	extra     map[string]Func
}

// Option configures [NewRegistry].
type Option func(*registryConfig)

// WithCurrencyFormatter sets the formatter used by formatCurrency.
// Without it a formatter with en-US and USD defaults is used.
func WithCurrencyFormatter(f *currency.Formatter) Option {
	return func(c *registryConfig) {
		c.formatter = f
	}
}

// WithFunc registers fn under name, replacing a built-in of the same name.
func WithFunc(name string, fn Func) Option {
	return func(c *registryConfig) {
		if c.extra == nil {
			c.extra = map[string]Func{}
		}
		c.extra[name] = fn
	}
}

// NewRegistry returns a registry holding the built-in transforms plus any
// added through opts.
func NewRegistry(opts ...Option) *Registry {
	var cfg registryConfig
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.formatter == nil {
		cfg.formatter = currency.MustNew(currency.Config{})
	}

	r := &Registry{funcs: make(map[string]Func, len(kindNames)+len(cfg.extra))}
	for _, k := range Kinds() {
		r.funcs[k.String()] = builtin(k, cfg.formatter)
	}
	for name, fn := range cfg.extra {
		if fn != nil {
			r.funcs[name] = fn
		}
	}
	return r
}

// Lookup returns the transform registered under exactly name.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func builtin(k Kind, f *currency.Formatter) Func {
	switch k {
	case FormatCurrency:
		return formatCurrency(f)
	case ToUpperCase:
		return toUpperCase
	case FormatDate:
		return formatDate
	case ReplaceString:
		return replaceString
	case RedactString:
		return redactString
	}
	panic(fmt.Sprintf("transform: no implementation for %v", k))
}
