package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-traslados/internal/application/reconcile"
)

func TestExitCode(t *testing.T) {
	clean := &reconcile.Report{}
	withIssues := &reconcile.Report{Issues: []reconcile.Issue{{ItemID: "X", Reason: "sin filas"}}}

	assert.Equal(t, exitOK, exitCode(clean, nil))
	assert.Equal(t, exitIssues, exitCode(withIssues, nil))
	assert.Equal(t, exitError, exitCode(withIssues, errors.New("cancelado")), "el error prevalece sobre los hallazgos")
	assert.Equal(t, exitError, exitCode(nil, errors.New("cancelado")))
	assert.Equal(t, exitOK, exitCode(nil, nil))
}
