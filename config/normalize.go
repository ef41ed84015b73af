package config

import (
	"reflect"
	"strings"
)

// Normalize trims whitespace from every string field, rule keys included,
// and canonicalizes case where it is not significant. Transform parameter
// values are left alone.
func (c *Config) Normalize() {
	trimStrings(reflect.ValueOf(c).Elem())
	c.Auth.Mode = strings.ToLower(c.Auth.Mode)
	c.Currency.Default = strings.ToUpper(c.Currency.Default)
	c.Locale.Language = strings.ToLower(c.Locale.Language)
	c.Locale.Region = strings.ToLower(c.Locale.Region)
}

// trimStrings walks structs and slices of structs. Maps and interfaces are
// skipped.
func trimStrings(v reflect.Value) {
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			trimStrings(v.Elem())
		}
	case reflect.Struct:
		for i := range v.NumField() {
			if f := v.Field(i); f.CanSet() {
				trimStrings(f)
			}
		}
	case reflect.Slice:
		for i := range v.Len() {
			trimStrings(v.Index(i))
		}
	case reflect.String:
		if v.CanSet() {
			v.SetString(strings.TrimSpace(v.String()))
		}
	}
}
