package repositorycache

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// modelName derives the key namespace for T: the plural snake_case form of
// its type name, so Repository[*BlogPost] caches under "blog_posts".
func modelName[T any]() string {
	typ := reflect.TypeFor[T]()
	for typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Slice {
		typ = typ.Elem()
	}
	name := toSnake(typ.Name())
	if name == "" {
		name = toSnake(typ.String())
	}
	return inflection.Plural(name)
}

// toSnake converts s to snake_case. Runs of upper case letters stay together
// ("HTTPServer" becomes "http_server") and any punctuation from reflected type
// names collapses into a single separator.
func toSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	sep := false
	emit := func(r rune) {
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}

	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					sep = true
				}
			}
			emit(unicode.ToLower(r))
		case unicode.IsLower(r), unicode.IsDigit(r):
			emit(r)
		default:
			sep = true
		}
	}
	return b.String()
}
