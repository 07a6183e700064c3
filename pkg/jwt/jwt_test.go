package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-traslados/pkg/jwt"
)

func TestGenerateYParse(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", "dep-bar", "jefe", "test", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "dep-bar", claims.DepartmentID)
	assert.Equal(t, "jefe", claims.Role)
	assert.Equal(t, "test", claims.Issuer)
}

func TestParse_Rechaza(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", "dep-bar", "", "test", 5)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", token)
	assert.Error(t, err, "firma incorrecta")

	expired, err := jwt.Generate("secreto", "u-1", "dep-bar", "", "test", -1)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", expired)
	assert.Error(t, err, "expirado")

	noDept, err := jwt.Generate("secreto", "u-1", "", "", "test", 5)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", noDept)
	assert.Error(t, err, "sin departamento")

	_, err = jwt.Generate("", "u-1", "d", "", "test", 5)
	assert.Error(t, err)
}
