// Package catalog normaliza los metadatos opacos que entrega el catálogo externo.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCategory pliega mayúsculas y elimina tildes: "Bebidas Frías" -> "bebidas frias".
func NormalizeCategory(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(cases.Fold().String(out)), " ")
}

// SameCategory compara dos categorías normalizadas. Una categoría vacía no coincide con nada.
func SameCategory(a, b string) bool {
	na, nb := NormalizeCategory(a), NormalizeCategory(b)
	return na != "" && na == nb
}
