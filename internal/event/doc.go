// Package event provides the publish/subscribe bus used to announce editor
// commits, saves and configuration reloads to collaborators that must not
// block editing.
//
// Events are published to hierarchical topics using dot notation, for
// example "document.committed". Subscriptions use topic patterns where
// "*" matches exactly one segment and "**" matches zero or more:
//
//	bus := event.NewBus()
//	bus.Start()
//	defer bus.Stop(ctx)
//
//	bus.Subscribe("document.*", func(ctx context.Context, ev any) error {
//	    commit := ev.(event.Event[event.Committed])
//	    ...
//	    return nil
//	})
//
//	bus.Publish(ctx, event.NewEvent(event.TopicCommitted, payload, "pipeline"))
//
// Publish delivers asynchronously through a bounded queue served by one
// worker goroutine, so handlers see events in publish order. PublishSync
// delivers on the calling goroutine. A panicking handler is recovered and
// reported to the configured panic handler.
package event
