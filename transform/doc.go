// Package transform holds the named value transforms that mapping rules can
// reference, for example "formatCurrency" or "toUpperCase".
//
// The built-in set is a closed enumeration ([Kind]); a [Registry] is built
// once with [NewRegistry], optionally extended with [WithFunc], and is
// read-only afterwards:
//
//	reg := transform.NewRegistry(transform.WithFunc("trim", trimFunc))
//	fn, ok := reg.Lookup("toUpperCase")
//
// Transforms never abort a batch. Recoverable problems are reported as errors
// wrapping [ErrMissingParam], [ErrShapeMismatch] or [ErrInvalidDate] alongside
// the value the caller should use, which is either the input unchanged or
// [NoValue].
package transform
