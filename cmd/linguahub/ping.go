package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"linguahub/internal/client"
)

// pingFlags holds the flags for the ping command.
type pingFlags struct {
	addr    string
	timeout time.Duration
}

var pingFlagVals pingFlags

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that a running server answers heartbeats",
	Example: `  linguahub ping --addr localhost:8080
  linguahub ping --addr learn.example.com:9000 --timeout 3s`,
	RunE: runPing,
}

func init() {
	f := &pingFlagVals

	pingCmd.Flags().StringVarP(&f.addr, "addr", "a", "localhost:8080", "Server address (host:port)")
	pingCmd.Flags().DurationVar(&f.timeout, "timeout", 5*time.Second, "Dial and call timeout")

	rootCmd.AddCommand(pingCmd)
}

func runPing(_ *cobra.Command, _ []string) error {
	f := &pingFlagVals

	c, err := client.Dial(client.Options{
		Addr:        f.addr,
		DialTimeout: f.timeout,
		CallTimeout: f.timeout,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	start := time.Now()
	if err := c.Heartbeat(); err != nil {
		return fmt.Errorf("heartbeat failed: %w", err)
	}
	fmt.Printf("pong from %s in %s\n", f.addr, time.Since(start).Round(time.Millisecond))
	return nil
}
