// Package currency formats monetary amounts for display.
//
// A [Formatter] is built once from a [Config] (process locale, fallback
// currency, pricing permission) and is read-only afterwards, so a single
// instance can be shared by every request:
//
//	f, err := currency.New(currency.Config{Locale: currency.LocaleFor("en", "us")})
//	s, err := f.Format(ctx, 1234.5, "CA", currency.DefaultOptions())
//	// s == "CA$ 1,234.50"
//
// Amounts are rendered with the requested number of fraction digits, then
// trailing zeros are trimmed back to a two digit floor. Whether the caller may
// see prices at all is decided by the [Authorizer] stored on the context.
package currency
