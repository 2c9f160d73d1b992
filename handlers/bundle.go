package handlers

import (
	"time"

	"slotbook/services/booking"
	"slotbook/services/catalog"
	"slotbook/services/command"
	"slotbook/services/ledger"
	"slotbook/services/provider"
	"slotbook/utils"
)

// HandlerBundle groups the engine services behind the HTTP endpoints.
type HandlerBundle struct {
	Providers provider.ProviderService
	Catalog   catalog.CatalogService
	Ledger    ledger.LedgerService
	Bookings  booking.BookingService
	Commands  *command.Dispatcher
	Health    *utils.HealthMonitor

	// Location reads the date and time fields of slot requests.
	Location *time.Location
}

func NewHandlerBundle(
	providers provider.ProviderService,
	cat catalog.CatalogService,
	led ledger.LedgerService,
	bookings booking.BookingService,
	health *utils.HealthMonitor,
	loc *time.Location,
) *HandlerBundle {
	return &HandlerBundle{
		Providers: providers,
		Catalog:   cat,
		Ledger:    led,
		Bookings:  bookings,
		Commands: &command.Dispatcher{
			Providers: providers,
			Catalog:   cat,
			Ledger:    led,
			Bookings:  bookings,
			Location:  loc,
		},
		Health:   health,
		Location: loc,
	}
}
