// Package telemetry builds OpenTelemetry providers for the engines.
//
// The engines accept any TracerProvider; this package covers the common case
// of a provider with a caller-supplied exporter and a service resource, for
// callers without their own OpenTelemetry setup.
package telemetry
