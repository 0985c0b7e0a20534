// Command eventtail prints lifecycle events from the NATS stream as they arrive.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"meal-ordering-be/internal/config"
	"meal-ordering-be/pkg/events"
	pktNats "meal-ordering-be/pkg/nats"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	filter := flag.String("type", ">", "event type to follow, e.g. PAYMENT_COMPLETED")
	durable := flag.String("durable", "eventtail", "durable consumer name")
	flag.Parse()

	if cfg.App.NatsURL == "" {
		log.Fatal("Error: NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	color.Cyan("Following %s on %s\n", pktNats.Subject(*filter), cfg.App.NatsURL)
	err = sub.Subscribe(ctx, pktNats.Subject(*filter), *durable, func(ctx context.Context, evt events.Event) error {
		printEvent(evt)
		return nil
	})
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	<-ctx.Done()
}

func printEvent(evt events.Event) {
	data, _ := json.Marshal(evt.Payload())
	line := evt.Timestamp().Format(time.RFC3339) + " " + evt.EventType() + " " + string(data)

	switch {
	case strings.HasSuffix(evt.EventType(), "_FAILED"), strings.HasSuffix(evt.EventType(), "_REJECTED"):
		color.Red(line)
	case strings.HasPrefix(evt.EventType(), "REFUND_"), strings.HasSuffix(evt.EventType(), "_REFUNDED"):
		color.Yellow(line)
	case strings.HasSuffix(evt.EventType(), "_CANCELLED"):
		color.Magenta(line)
	default:
		color.Green(line)
	}
}
