package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slotbook/services/apperr"
	"slotbook/services/booking"
	"slotbook/services/catalog"
	"slotbook/services/ledger"
	"slotbook/services/provider"
)

const displayLayout = "2006-01-02 15:04"

// Result is the reply to one textual command: a rendered message for chat
// front ends plus the typed payload.
type Result struct {
	Command string `json:"command"`
	Text    string `json:"text"`
	Data    any    `json:"data,omitempty"`
}

// Dispatcher routes the bot commands to the engine services.
type Dispatcher struct {
	Providers provider.ProviderService
	Catalog   catalog.CatalogService
	Ledger    ledger.LedgerService
	Bookings  booking.BookingService
	Location  *time.Location
}

type handler func(ctx context.Context, actor, args string) (Result, error)

func (d *Dispatcher) handlers() map[string]handler {
	return map[string]handler{
		"register_provider":       d.registerProvider,
		"add_service":             d.addService,
		"my_services":             d.myServices,
		"add_slot":                d.addSlot,
		"my_slots":                d.mySlots,
		"cancel_booking_provider": d.cancelBookingProvider,
		"services":                d.services,
		"slots":                   d.slots,
		"book":                    d.book,
		"my_bookings":             d.myBookings,
		"cancel_booking":          d.cancelBooking,
		"help":                    d.help,
		"start":                   d.help,
	}
}

var commandNames = []string{
	"register_provider", "add_service", "my_services", "add_slot", "my_slots",
	"cancel_booking_provider", "services", "slots", "book", "my_bookings", "cancel_booking", "help",
}

// Usage describes one command for the help reply.
type Usage struct {
	Name    string `json:"name"`
	Args    string `json:"args,omitempty"`
	Summary string `json:"summary"`
}

var usages = map[string]Usage{
	"register_provider":       {Args: "name", Summary: "register yourself as a provider"},
	"add_service":             {Args: "name; [description;] duration_minutes; [price]", Summary: "add a service"},
	"my_services":             {Summary: "list your services"},
	"add_slot":                {Args: "service_id YYYY-MM-DD HH:MM", Summary: "open a slot for one of your services"},
	"my_slots":                {Summary: "list your slots and who booked them"},
	"cancel_booking_provider": {Args: "booking_id", Summary: "cancel a booking of one of your slots"},
	"services":                {Summary: "list every available service"},
	"slots":                   {Args: "service_id", Summary: "list open future slots of a service"},
	"book":                    {Args: "slot_id", Summary: "book a slot"},
	"my_bookings":             {Summary: "list your upcoming bookings"},
	"cancel_booking":          {Args: "booking_id", Summary: "cancel one of your bookings"},
	"help":                    {Summary: "show this list"},
}

// Names lists the supported commands.
func (d *Dispatcher) Names() []string {
	return append([]string(nil), commandNames...)
}

// Execute runs one command on behalf of actor. A leading "/" on the name
// is ignored.
func (d *Dispatcher) Execute(ctx context.Context, actor, name, args string) (Result, error) {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	h, ok := d.handlers()[name]
	if !ok {
		return Result{}, apperr.Invalid("unknown command %q; try one of: %s", name, strings.Join(commandNames, ", "))
	}
	res, err := h(ctx, actor, strings.TrimSpace(args))
	if err != nil {
		return Result{}, err
	}
	res.Command = name
	return res, nil
}

func (d *Dispatcher) loc() *time.Location {
	if d.Location != nil {
		return d.Location
	}
	return time.UTC
}

func (d *Dispatcher) when(t time.Time) string {
	return t.In(d.loc()).Format(displayLayout)
}

func (d *Dispatcher) help(_ context.Context, _, _ string) (Result, error) {
	list := make([]Usage, 0, len(commandNames))
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, name := range commandNames {
		u := usages[name]
		u.Name = name
		list = append(list, u)
		b.WriteString("\n/" + name)
		if u.Args != "" {
			b.WriteString(" " + u.Args)
		}
		b.WriteString(" - " + u.Summary)
	}
	return Result{Text: b.String(), Data: list}, nil
}

func (d *Dispatcher) registerProvider(ctx context.Context, actor, args string) (Result, error) {
	p, err := d.Providers.RegisterProvider(ctx, actor, args)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: fmt.Sprintf("Registered as provider %q (id %d).", p.Name, p.ID), Data: p}, nil
}

func (d *Dispatcher) addService(ctx context.Context, actor, args string) (Result, error) {
	in, err := ParseServiceArgs(args)
	if err != nil {
		return Result{}, err
	}
	svc, err := d.Catalog.AddService(ctx, actor, in)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text: fmt.Sprintf("Service #%d %q added: %d min, price %.2f.", svc.ID, svc.Name, svc.DurationMinutes, svc.Price),
		Data: svc,
	}, nil
}

func (d *Dispatcher) myServices(ctx context.Context, actor, _ string) (Result, error) {
	services, err := d.Catalog.ListServices(ctx, actor)
	if err != nil {
		return Result{}, err
	}
	if len(services) == 0 {
		return Result{Text: "You have no services yet.", Data: services}, nil
	}
	var b strings.Builder
	b.WriteString("Your services:")
	for _, s := range services {
		fmt.Fprintf(&b, "\n#%d %s (%d min, %.2f)", s.ID, s.Name, s.DurationMinutes, s.Price)
		if s.Description != "" {
			fmt.Fprintf(&b, " - %s", s.Description)
		}
	}
	return Result{Text: b.String(), Data: services}, nil
}

func (d *Dispatcher) addSlot(ctx context.Context, actor, args string) (Result, error) {
	serviceID, start, err := ParseSlotArgs(args, d.loc())
	if err != nil {
		return Result{}, err
	}
	slot, err := d.Ledger.AddSlot(ctx, actor, serviceID, start)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text: fmt.Sprintf("Slot #%d added: %s to %s.", slot.ID, d.when(slot.Start), slot.End.In(d.loc()).Format("15:04")),
		Data: slot,
	}, nil
}

func (d *Dispatcher) mySlots(ctx context.Context, actor, _ string) (Result, error) {
	slots, err := d.Ledger.ListSlots(ctx, actor)
	if err != nil {
		return Result{}, err
	}
	if len(slots) == 0 {
		return Result{Text: "You have no slots yet.", Data: slots}, nil
	}
	var b strings.Builder
	b.WriteString("Your slots:")
	for _, s := range slots {
		fmt.Fprintf(&b, "\n#%d %s %s", s.ID, s.ServiceName, d.when(s.Start))
		if s.Booking != nil {
			fmt.Fprintf(&b, " booked (booking #%d, client %s)", s.Booking.ID, s.Booking.ClientID)
		} else {
			b.WriteString(" free")
		}
	}
	return Result{Text: b.String(), Data: slots}, nil
}

func (d *Dispatcher) cancelBookingProvider(ctx context.Context, actor, args string) (Result, error) {
	id, err := ParseID(args)
	if err != nil {
		return Result{}, err
	}
	v, err := d.Bookings.CancelByProvider(ctx, id, actor)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: fmt.Sprintf("Booking #%d cancelled. The client has been notified.", v.ID), Data: v}, nil
}

func (d *Dispatcher) services(ctx context.Context, _, _ string) (Result, error) {
	services, err := d.Catalog.ListPublicServices(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(services) == 0 {
		return Result{Text: "No services are available right now.", Data: services}, nil
	}
	var b strings.Builder
	b.WriteString("Available services:")
	for _, s := range services {
		fmt.Fprintf(&b, "\n#%d %s by %s (%d min, %.2f)", s.ID, s.Name, s.ProviderName, s.DurationMinutes, s.Price)
	}
	return Result{Text: b.String(), Data: services}, nil
}

func (d *Dispatcher) slots(ctx context.Context, _, args string) (Result, error) {
	id, err := ParseID(args)
	if err != nil {
		return Result{}, err
	}
	slots, err := d.Ledger.ListAvailableFutureSlots(ctx, id, 0)
	if err != nil {
		return Result{}, err
	}
	if len(slots) == 0 {
		return Result{Text: "No free slots for this service.", Data: slots}, nil
	}
	var b strings.Builder
	b.WriteString("Free slots:")
	for _, s := range slots {
		fmt.Fprintf(&b, "\n#%d %s", s.ID, d.when(s.Start))
	}
	return Result{Text: b.String(), Data: slots}, nil
}

func (d *Dispatcher) book(ctx context.Context, actor, args string) (Result, error) {
	id, err := ParseID(args)
	if err != nil {
		return Result{}, err
	}
	v, err := d.Bookings.Reserve(ctx, id, actor)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text: fmt.Sprintf("Booked! Booking #%d: %s with %s on %s.", v.ID, v.Service.Name, v.Provider.Name, d.when(v.Slot.Start)),
		Data: v,
	}, nil
}

func (d *Dispatcher) myBookings(ctx context.Context, actor, _ string) (Result, error) {
	views, err := d.Bookings.ListClientBookings(ctx, actor)
	if err != nil {
		return Result{}, err
	}
	if len(views) == 0 {
		return Result{Text: "You have no upcoming bookings.", Data: views}, nil
	}
	var b strings.Builder
	b.WriteString("Your bookings:")
	for _, v := range views {
		fmt.Fprintf(&b, "\n#%d %s with %s on %s", v.ID, v.Service.Name, v.Provider.Name, d.when(v.Slot.Start))
	}
	return Result{Text: b.String(), Data: views}, nil
}

func (d *Dispatcher) cancelBooking(ctx context.Context, actor, args string) (Result, error) {
	id, err := ParseID(args)
	if err != nil {
		return Result{}, err
	}
	v, err := d.Bookings.CancelByClient(ctx, id, actor)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: fmt.Sprintf("Booking #%d cancelled.", v.ID), Data: v}, nil
}
