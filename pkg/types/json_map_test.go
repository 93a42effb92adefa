package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMapRoundTrip(t *testing.T) {
	original := JSONMap{
		"IBAMA":  "https://servicos.ibama.gov.br",
		"Cetesb": "https://licenciamento.cetesb.sp.gov.br",
	}

	value, err := original.Value()
	require.NoError(t, err)

	var decoded JSONMap
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, original, decoded)
}

func TestJSONMapScanNil(t *testing.T) {
	decoded := JSONMap{"stale": "value"}
	require.NoError(t, decoded.Scan(nil))
	assert.Nil(t, decoded)
}

func TestJSONMapScanString(t *testing.T) {
	var decoded JSONMap
	require.NoError(t, decoded.Scan(`{"Prefeitura":"https://prefeitura.sp.gov.br"}`))
	assert.Equal(t, "https://prefeitura.sp.gov.br", decoded["Prefeitura"])
}

func TestJSONMapScanRejectsUnknownType(t *testing.T) {
	var decoded JSONMap
	assert.Error(t, decoded.Scan(42))
}
