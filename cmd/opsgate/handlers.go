package main

import (
	"context"
	"fmt"

	"github.com/zen-systems/opsgate/pkg/dispatch"
	"github.com/zen-systems/opsgate/pkg/invoke"
)

// demoRegistry registers a stand-in handler for every built-in
// operation so the binary runs end to end without backend
// credentials. Real deployments replace these with service clients.
func demoRegistry() *invoke.Registry {
	r := invoke.NewRegistry()

	echo := func(format string, keys ...string) invoke.Handler {
		return func(ctx context.Context, params map[string]string) (any, error) {
			args := make([]any, 0, len(keys))
			for _, k := range keys {
				args = append(args, params[k])
			}
			return fmt.Sprintf(format, args...), nil
		}
	}

	r.Register("source-control", "list-commits", echo("last %s commits on %s/%s", "count", "org", "repo"))
	r.Register("source-control", "list-pulls", echo("%s pull requests for %s/%s", "state", "org", "repo"))
	r.Register("source-control", "clone-repo", echo("cloned %s/%s", "org", "repo"))

	r.Register("build-system", "status-query", echo("%s builds in %s over %s", "status", "folder", "window"))
	r.Register("build-system", "trigger-build", echo("queued %s/%s", "folder", "job"))
	r.Register("build-system", "console-log", echo("console output for %s/%s", "folder", "job"))
	r.Register("build-system", "build-params", echo("parameters for %s/%s", "folder", "job"))

	r.Register("issue-tracker", "get-ticket", echo("ticket %s", "key"))
	r.Register("issue-tracker", "list-comments", echo("comments on %s", "key"))
	r.Register("issue-tracker", "search-tickets", echo("tickets matching %q", "text"))
	r.Register("issue-tracker", "add-comment", echo("commented on %s", "key"))

	r.Register("graph", "dependency-query", echo("%s dependencies of %s", "direction", "class"))
	r.Register("graph", "impact-query", echo("impact of changing %s", "class"))
	r.Register("graph", "cypher-query", echo("ran query %q", "query"))

	r.Register("monitoring", "resource-query", echo("resources for %s over %s", "application", "window"))
	r.Register("monitoring", "alert-query", echo("%s alerts over %s", "severity", "window"))
	r.Register("monitoring", "transaction-query", echo("transactions for %s", "application"))

	// Mutating operations carry compensations so multi-step requests
	// can roll back.
	r.RegisterCompensation("build-system", "trigger-build", func(ctx context.Context, d *dispatch.Decision, result any) error {
		return nil
	})
	r.RegisterCompensation("issue-tracker", "add-comment", func(ctx context.Context, d *dispatch.Decision, result any) error {
		return nil
	})

	return r
}
