// Command extcore generates API documentation and endpoint registries from
// handler source files.
//
//	extcore docs --root . --handlers internal/handlers --out docs/api
//	extcore registry --root . --handlers internal/handlers --package handlers --out internal/handlers/registry_gen.go
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
