// Package redact prepares a graph file for a narrower audience.
//
// Every value in a file carries a sensitivity, explicitly or by default:
// identifier schemes default per the scheme table (person-node identifiers
// default to confidential), edge properties default per a built-in table
// that a per-edge "_property_sensitivity" record can override. A disclosure
// scope admits a ceiling of sensitivities: public admits public values only,
// partner adds restricted, private admits everything.
//
// Redactor.ForScope produces a copy of a file safe for a target scope. Nodes
// whose classification exceeds the scope, and nodes picked by an optional
// CEL selector, are replaced with boundary references; surviving nodes and
// edges lose the identifiers and properties the scope does not admit. Edge
// connectivity is always preserved.
package redact
