package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/facturasur/dte-engine/internal/domain/dte"
	"github.com/facturasur/dte-engine/internal/domain/entity"
)

func testCAF(start, end int64) *entity.CAF {
	return &entity.CAF{
		ID:           "caf-1",
		CompanyID:    "empresa-1",
		DocumentType: dte.Boleta,
		FolioStart:   start,
		FolioEnd:     end,
		CurrentFolio: start,
		IsActive:     true,
	}
}

func TestCAF_TakeFolio_ConsumeSecuencial(t *testing.T) {
	caf := testCAF(1, 3)

	assert.Equal(t, int64(1), caf.TakeFolio())
	assert.Equal(t, int64(2), caf.TakeFolio())
	assert.False(t, caf.Exhausted, "quedan folios: no debe marcarse agotado")

	assert.Equal(t, int64(3), caf.TakeFolio())
	assert.True(t, caf.Exhausted, "al consumir el último folio el rango queda agotado")
	assert.Equal(t, int64(0), caf.Available())
}

func TestCAF_TakeFolio_RangoDeUnFolio(t *testing.T) {
	caf := testCAF(50, 50)

	assert.Equal(t, int64(1), caf.Available())
	assert.Equal(t, int64(50), caf.TakeFolio())
	assert.True(t, caf.Exhausted)
}

func TestCAF_Available(t *testing.T) {
	caf := testCAF(100, 199)
	assert.Equal(t, int64(100), caf.Available())

	caf.CurrentFolio = 150
	assert.Equal(t, int64(50), caf.Available())

	caf.CurrentFolio = 200 // pasado el final
	assert.Equal(t, int64(0), caf.Available())
}

func TestCAF_ExpiredAt(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	caf := testCAF(1, 10)
	assert.False(t, caf.ExpiredAt(now), "sin fecha de vencimiento el CAF no expira")

	past := now.Add(-time.Hour)
	caf.ExpirationDate = &past
	assert.True(t, caf.ExpiredAt(now))

	future := now.Add(time.Hour)
	caf.ExpirationDate = &future
	assert.False(t, caf.ExpiredAt(now))
}
