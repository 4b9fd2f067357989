/*
Package observability turns engine lifecycle hooks into Prometheus metrics
and structured log lines.

Both helpers return domain.LifecycleHooks, so they compose with each other
and with user hooks through domain.ComposeHooks.
*/
package observability
