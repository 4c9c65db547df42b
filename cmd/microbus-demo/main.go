// Package main demonstrates the microbus event bus and event loop.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dshills/microbus"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:          "microbus-demo",
		Short:        "Exercise the microbus event bus and event loop",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			if !verbose {
				logger = logger.Level(zerolog.ErrorLevel)
			}
			return run(logger)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log loop activity")
	return cmd
}

func run(logger zerolog.Logger) error {
	// Synchronous bus: two independently typed events.
	events := microbus.New()

	calcID, err := events.Subscribe("OnCalc", func(value float64, times int) {
		fmt.Printf("Multiplying %v by %d is %v\n", value, times, value*float64(times))
	})
	if err != nil {
		return err
	}

	greeting := "Hello, "
	msgID, err := events.Subscribe("OnMessage", func(message string) {
		fmt.Println(greeting + message)
	})
	if err != nil {
		return err
	}

	pie := 3.14159265
	if err := events.Trigger("OnCalc", pie, 4); err != nil {
		return err
	}
	if err := events.Trigger("OnMessage", "Joe"); err != nil {
		return err
	}

	// After unsubscribing, OnMessage triggers are silent no-ops.
	events.Unsubscribe("OnMessage", msgID)
	if err := events.Trigger("OnCalc", pie, 8); err != nil {
		return err
	}
	if err := events.Trigger("OnMessage", "Jane"); err != nil {
		return err
	}

	events.Unsubscribe("OnCalc", calcID)
	events.Clear()

	// Triggering from another goroutine; pointer payloads are shared, not
	// copied.
	ptrID, err := events.Subscribe("OnPtrMessage", func(message *string) {
		fmt.Println("Received message:", *message)
	})
	if err != nil {
		return err
	}

	doneTrigger := make(chan error, 1)
	go func() {
		message := "Hello from another goroutine!"
		doneTrigger <- events.Trigger("OnPtrMessage", &message)
	}()
	if err := <-doneTrigger; err != nil {
		return err
	}
	events.Unsubscribe("OnPtrMessage", ptrID)
	events.Clear()

	// Event loop: deferred triggers execute serially, in enqueue order.
	sharedBus := microbus.New()
	loop := microbus.NewLoop(microbus.WithLogger(logger))
	defer loop.Close()

	if _, err := sharedBus.Subscribe("OnFactorial", func(number int) {
		result := factorial(number)
		time.Sleep(500 * time.Millisecond)
		fmt.Printf("Factorial of %d is %d\n", number, result)
	}); err != nil {
		return err
	}

	for _, number := range []int{15, 17, 19, 16, 18, 20} {
		if err := loop.Enqueue(sharedBus, "OnFactorial", number); err != nil {
			return err
		}
	}

	loop.Wait()
	loop.Stop()
	sharedBus.Clear()

	// Hub: one handle owning a bus and a loop.
	hub := microbus.NewHub(microbus.WithLogger(logger))
	defer hub.Close()

	numberID, err := hub.Subscribe("OnNumber", func(number int) {
		fmt.Printf("Number %d was passed to event.\n", number)
	})
	if err != nil {
		return err
	}
	if err := hub.Enqueue("OnNumber", 69); err != nil {
		return err
	}

	hub.Wait()
	hub.Unsubscribe("OnNumber", numberID)
	hub.Stop()
	return nil
}

func factorial(n int) int64 {
	result := int64(1)
	for i := 2; i <= n; i++ {
		result *= int64(i)
	}
	return result
}
