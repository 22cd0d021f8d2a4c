package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time.
var v = validator.New()

// Email reports whether s has the shape local-part@domain.tld.
func Email(s string) bool {
	if v.Var(s, "required,email") != nil {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return strings.Contains(s[at+1:], ".")
}
