// Package sii contiene validaciones y utilidades alineadas a la normativa del
// Servicio de Impuestos Internos (Chile).
package sii

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidateRUT valida que el RUT tenga un dígito verificador correcto según el
// algoritmo módulo 11. Acepta "12.345.678-5", "12345678-5" o "123456785";
// el DV puede ser dígito o K (mayúscula o minúscula).
func ValidateRUT(rut string) error {
	body, dv, err := splitRUT(rut)
	if err != nil {
		return err
	}
	expected := computeDV(body)
	if dv != expected {
		return fmt.Errorf("sii: dígito verificador del RUT inválido: esperado %c, recibido %c", expected, dv)
	}
	return nil
}

// ComputeDV calcula el dígito verificador para el cuerpo del RUT (solo
// dígitos, sin DV).
func ComputeDV(body string) (byte, error) {
	for _, r := range body {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("sii: el cuerpo del RUT debe ser numérico: %q", body)
		}
	}
	if body == "" {
		return 0, fmt.Errorf("sii: cuerpo del RUT vacío")
	}
	return computeDV(body), nil
}

// NormalizeRUT devuelve el RUT en formato canónico "cuerpo-DV", sin puntos y
// con el DV en mayúscula. No valida el DV.
func NormalizeRUT(rut string) (string, error) {
	body, dv, err := splitRUT(rut)
	if err != nil {
		return "", err
	}
	return body + "-" + string(dv), nil
}

// splitRUT separa cuerpo y dígito verificador, descartando puntos y guiones.
func splitRUT(rut string) (body string, dv byte, err error) {
	var chars []byte
	for _, r := range strings.ToUpper(rut) {
		switch {
		case unicode.IsDigit(r):
			chars = append(chars, byte(r))
		case r == 'K':
			chars = append(chars, 'K')
		case r == '.' || r == '-' || r == ' ':
			// separadores permitidos
		default:
			return "", 0, fmt.Errorf("sii: RUT con caracteres inválidos: %q", rut)
		}
	}
	if len(chars) < 2 {
		return "", 0, fmt.Errorf("sii: RUT demasiado corto: %q", rut)
	}
	body = string(chars[:len(chars)-1])
	dv = chars[len(chars)-1]
	if strings.ContainsRune(body, 'K') {
		return "", 0, fmt.Errorf("sii: el cuerpo del RUT debe ser numérico: %q", rut)
	}
	return body, dv, nil
}

// computeDV aplica módulo 11 con pesos 2..7 cíclicos desde el dígito menos
// significativo. 11 -> '0', 10 -> 'K'.
func computeDV(body string) byte {
	sum := 0
	weight := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}
