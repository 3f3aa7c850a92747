package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturasur/dte-engine/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	FolioLedger *billing.FolioLedger
	EmitDTE     *billing.EmitDTEUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todas las rutas del motor son
// protegidas: el gateway emite el token con el contexto del llamador.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// CAF / ledger de folios
	caf := protected.Group("/caf")
	cafHandler := NewCAFHandler(deps.FolioLedger)
	caf.Post("/", cafHandler.Register)
	caf.Get("/", cafHandler.List)
	caf.Get("/available", cafHandler.Available)
	caf.Post("/:id/deactivate", cafHandler.Deactivate)

	// DTE / emisión y consulta
	dteGroup := protected.Group("/dte")
	dteHandler := NewDTEHandler(deps.EmitDTE)
	dteGroup.Post("/", dteHandler.Emit)
	dteGroup.Get("/", dteHandler.List)
	dteGroup.Get("/ledger", dteHandler.SalesLedger)
	dteGroup.Get("/:id", dteHandler.GetByID)
	dteGroup.Get("/:id/status", dteHandler.GetStatus)
	dteGroup.Patch("/:id/status", dteHandler.UpdateStatus)
}
