package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-traslados/internal/domain/catalog"
)

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "bebidas frias", catalog.NormalizeCategory("  Bebidas   FRÍAS "))
	assert.Equal(t, "panaderia", catalog.NormalizeCategory("Panadería"))
}

func TestSameCategory(t *testing.T) {
	assert.True(t, catalog.SameCategory("Recreación", "recreacion"))
	assert.False(t, catalog.SameCategory("Bar", "Cocina"))
	assert.False(t, catalog.SameCategory("", ""), "vacío no coincide")
}
