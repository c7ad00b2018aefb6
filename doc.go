// Package omtsf is the entry point of the OMTSF core SDK: merge, update,
// and redaction of supply-chain graph files.
//
// The subpackages carry the machinery: graph holds the data model, identity
// the identifier schemes and match predicates, resolve the grouping
// resolver, merge and update the two reconciliation engines, boundary and
// redact the selective-disclosure tooling, baseline the prior-export store,
// config the YAML configuration loader, and telemetry the tracing helper.
//
// This package offers the common path with default engines:
//
//	out, meta, warnings, err := omtsf.Merge(ctx, fileA, fileB)
//
// Pipelines needing tuned engines build a Client:
//
//	cfg, err := config.Load("omtsf.yaml")
//	// ...
//	client, err := omtsf.NewClient(omtsf.WithConfig(cfg))
//	out, meta, warnings, err = client.Merge(ctx, fileA, fileB)
package omtsf
