package sii_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturasur/dte-engine/pkg/sii"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests ValidateRUT — módulo 11
//
// Vectores calculados a mano con pesos cíclicos 2..7 desde el dígito menos
// significativo:
//
//	12345678 → suma 138, 138 mod 11 = 6, 11-6 = 5  → DV '5'
//	12345670 → suma 122, 122 mod 11 = 1, 11-1 = 10 → DV 'K'
//	12345675 → suma 132, 132 mod 11 = 0, 11-0 = 11 → DV '0'
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateRUT_FormatosAceptados(t *testing.T) {
	// El mismo RUT válido en todos los formatos de entrada soportados.
	for _, rut := range []string{
		"12.345.678-5",
		"12345678-5",
		"123456785",
		"12345678-5 ",
	} {
		assert.NoError(t, sii.ValidateRUT(rut), "el RUT %q debe ser válido", rut)
	}
}

func TestValidateRUT_DigitoK(t *testing.T) {
	assert.NoError(t, sii.ValidateRUT("12.345.670-K"), "DV K mayúscula")
	assert.NoError(t, sii.ValidateRUT("12345670-k"), "DV K minúscula")
}

func TestValidateRUT_DigitoCero(t *testing.T) {
	// Resto 11 del módulo 11 mapea a DV '0'.
	assert.NoError(t, sii.ValidateRUT("12.345.675-0"))
}

func TestValidateRUT_DVIncorrecto(t *testing.T) {
	assert.Error(t, sii.ValidateRUT("12.345.678-9"),
		"un DV que no corresponde al cuerpo debe rechazarse")
	assert.Error(t, sii.ValidateRUT("12345678-K"))
}

func TestValidateRUT_EntradasInvalidas(t *testing.T) {
	for _, rut := range []string{
		"",
		"5",
		"12.345.6A8-5", // letra en el cuerpo
		"1K345678-5",   // K fuera de la posición de DV
	} {
		assert.Error(t, sii.ValidateRUT(rut), "el RUT %q debe rechazarse", rut)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ComputeDV / NormalizeRUT
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeDV_Vectores(t *testing.T) {
	cases := []struct {
		body string
		dv   byte
	}{
		{"12345678", '5'},
		{"12345670", 'K'},
		{"12345675", '0'},
		{"6", 'K'}, // suma 12, 12 mod 11 = 1, 11-1 = 10
		{"1", '9'},
	}
	for _, c := range cases {
		dv, err := sii.ComputeDV(c.body)
		require.NoError(t, err, "cuerpo %q", c.body)
		assert.Equal(t, c.dv, dv, "DV esperado para el cuerpo %q", c.body)
	}
}

func TestComputeDV_CuerpoInvalido(t *testing.T) {
	_, err := sii.ComputeDV("")
	assert.Error(t, err)
	_, err = sii.ComputeDV("123a5")
	assert.Error(t, err)
}

func TestNormalizeRUT_FormatoCanonico(t *testing.T) {
	for _, c := range []struct{ in, out string }{
		{"12.345.678-5", "12345678-5"},
		{"12345670-k", "12345670-K"},
		{"123456785", "12345678-5"},
	} {
		got, err := sii.NormalizeRUT(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.out, got)
	}
}
