// Package notifications delivers batch run milestones via ntfy.
//
// The default implementation posts to the topic configured in config.toml and
// gracefully degrades to a no-op when no topic is set, so the batch pipeline
// never guards its notify calls. Deliveries are best-effort: a failed push is
// logged by the caller and never affects the run outcome.
package notifications
