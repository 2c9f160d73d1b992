package command

import (
	"strconv"
	"strings"
	"time"

	"slotbook/services/apperr"
	"slotbook/services/catalog"
)

const (
	serviceUsage = "usage: add_service name; [description;] duration_minutes; [price]"
	slotUsage    = "usage: add_slot service_id YYYY-MM-DD HH:MM"
	slotLayout   = "2006-01-02 15:04"
)

// ParseServiceArgs reads "name; description?; duration; price?". With three
// parts the middle one decides: an integer there means name;duration;price.
func ParseServiceArgs(s string) (catalog.ServiceInput, error) {
	var in catalog.ServiceInput
	parts := strings.Split(s, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var duration, price string
	switch len(parts) {
	case 2:
		in.Name, duration = parts[0], parts[1]
	case 3:
		if _, err := strconv.Atoi(parts[1]); err == nil {
			in.Name, duration, price = parts[0], parts[1], parts[2]
		} else {
			in.Name, in.Description, duration = parts[0], parts[1], parts[2]
		}
	case 4:
		in.Name, in.Description, duration, price = parts[0], parts[1], parts[2], parts[3]
	default:
		return in, apperr.Invalid(serviceUsage)
	}

	if in.Name == "" {
		return in, apperr.Invalid("service name must not be empty; " + serviceUsage)
	}
	d, err := strconv.Atoi(duration)
	if err != nil || d <= 0 {
		return in, apperr.Invalid("duration must be a positive whole number of minutes; " + serviceUsage)
	}
	in.DurationMinutes = d
	if price != "" {
		p, err := strconv.ParseFloat(price, 64)
		if err != nil || p < 0 {
			return in, apperr.Invalid("price must be a number greater than or equal to 0; " + serviceUsage)
		}
		in.Price = p
	}
	return in, catalog.Validate(in.Name, in.DurationMinutes, in.Price)
}

// ParseSlotArgs reads "serviceId YYYY-MM-DD HH:MM" as wall-clock time in loc.
func ParseSlotArgs(args string, loc *time.Location) (int64, time.Time, error) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return 0, time.Time{}, apperr.Invalid(slotUsage)
	}
	id, err := ParseID(fields[0])
	if err != nil {
		return 0, time.Time{}, apperr.Invalid("service id must be a positive number; " + slotUsage)
	}
	start, err := ParseStart(fields[1], fields[2], loc)
	if err != nil {
		return 0, time.Time{}, err
	}
	return id, start, nil
}

// ParseStart combines a date and a clock time typed by an actor.
func ParseStart(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(slotLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, apperr.Invalid("date and time must look like 2024-07-15 10:00; " + slotUsage)
	}
	return start, nil
}

// ParseID reads a positive integer id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("%q is not a valid id", s)
	}
	return id, nil
}
