package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/enercheck/compliance-server/client"
	"github.com/enercheck/compliance-server/config"
	"github.com/enercheck/compliance-server/events"
	"github.com/enercheck/compliance-server/util"
)

var (
	zkAddrs = flag.String("zk", util.GetEnvWithDefault(config.EC_ZK_URL, "zk:2181"), "comma separated zookeeper addresses registering the kafka brokers")
	group   = flag.String("group", "enercheck-responder", "consumer group name to join")
	idle    = flag.Duration("idle", 30*time.Second, "exit once the stream has been idle this long; 0 follows forever")
	debug   = flag.Bool("debug", false, "log consumer internals")
)

// This binary tails the engine's event stream, writing one JSON envelope per
// line so downstream tooling can follow rule, checklist, and check activity.
func main() {
	flag.Parse()

	responder, err := client.NewEnerCheckResponder(client.Config{}, *group, *zkAddrs, writeEvent)
	if err != nil {
		log.Fatal(err)
	}
	responder.DebugMode = *debug
	responder.Timeout = *idle
	if *idle == 0 {
		responder.Timeout = time.Duration(1<<63 - 1)
	}

	done := make(chan error, 1)
	go func() {
		done <- responder.ConsumeKafka()
	}()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigchan:
		fmt.Fprintln(os.Stderr, "Shutting down.")
	case err := <-done:
		if err != nil {
			log.Fatal(err)
		}
	}
	responder.Consumer.Close()
	fmt.Fprintln(os.Stderr, "Exited cleanly.")
}

func writeEvent(c *client.EnerCheckResponder, gem *events.GEM) error {
	_, err := fmt.Fprintln(os.Stdout, string(gem.Yield()))
	return err
}
