package common

import (
	"context"
	"time"

	"github.com/sandeepkv93/authplus-license-service/internal/observability"
	"github.com/sandeepkv93/authplus-license-service/internal/tools/ui"
)

type Invocation struct {
	Tool    string
	Command string
	CI      bool
	Timeout time.Duration
}

func (i Invocation) Title() string {
	return i.Tool + " " + i.Command
}

// Execute runs fn headless in CI mode and through the terminal UI otherwise.
// In CI mode the JSON result is printed before returning.
func Execute(inv Invocation, fn func(context.Context) ([]string, error)) ([]string, error) {
	if inv.Timeout <= 0 {
		inv.Timeout = 2 * time.Minute
	}
	start := time.Now()
	var (
		details []string
		err     error
	)
	if inv.CI {
		ctx, cancel := context.WithTimeout(context.Background(), inv.Timeout)
		details, err = fn(ctx)
		cancel()
	} else {
		details, err = ui.Run(inv.Title(), inv.Timeout, fn)
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordToolCommandRun(context.Background(), inv.Tool, inv.Command, outcome)
	observability.RecordToolCommandDuration(context.Background(), inv.Tool, inv.Command, outcome, time.Since(start))

	if inv.CI {
		PrintCIResult(err == nil, inv.Title(), details, err)
	}
	return details, err
}
