package logging

import "log/slog"

// Common field names so log output stays greppable across packages.
const (
	FieldService = "service"
	FieldTopic   = "topic"
	FieldAlertID = "alert_id"
	FieldIP      = "ip"
	FieldError   = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Topic returns a slog attribute for an event bus topic.
func Topic(name string) slog.Attr {
	return slog.String(FieldTopic, name)
}

// AlertID returns a slog attribute for an alert ID.
func AlertID(id string) slog.Attr {
	return slog.String(FieldAlertID, id)
}

// IP returns a slog attribute for a client IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
