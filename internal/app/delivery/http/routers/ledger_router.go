package routers

import (
	"medledger-service/internal/app/delivery/http/controllers"
	"medledger-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachLedgerRoutes(router chi.Router, middlewares *middlewares.Middlewares, ctrl *controllers.LedgerController) {
	router.Post("/", ctrl.RecordPayment)
	router.Get("/", ctrl.ListRecords)
	router.Post("/{recordID}/retry", ctrl.RetrySync)
	router.Delete("/{recordID}", ctrl.DeleteRecord)
}
