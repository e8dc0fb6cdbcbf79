package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	natsio "github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/log"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/config"
)

var (
	speed       int
	sessionInfo string
)

// recordedEvent is one line of a telemetry recording.
type recordedEvent struct {
	Type string          `json:"type"` // telemetry|sessioninfo|connect|disconnect
	Data json.RawMessage `json:"data"`
}

func NewReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <recording>",
		Short: "replays a recorded telemetry file onto the NATS subjects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return startReplay(args[0])
		},
	}
	cmd.Flags().IntVar(&speed, "speed", 1,
		"Recording speed (0 means: go as fast as possible)")
	cmd.Flags().StringVar(&sessionInfo, "session-info", "",
		"optional session info YAML published before the first sample")
	return cmd
}

//nolint:funlen // by design
func startReplay(filename string) error {
	conn, err := natsio.Connect(config.NatsURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	subject := func(suffix string) string {
		return fmt.Sprintf("%s.%s", config.SubjectPrefix, suffix)
	}

	if err := conn.Publish(subject("connect"), nil); err != nil {
		return err
	}
	if sessionInfo != "" {
		raw, err := os.ReadFile(sessionInfo)
		if err != nil {
			return err
		}
		if err := conn.Publish(subject("sessioninfo"), raw); err != nil {
			return err
		}
	}

	// 60Hz recording assumed
	tickDelay := time.Duration(0)
	if speed > 0 {
		tickDelay = time.Second / time.Duration(60*speed)
	}

	num := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var evt recordedEvent
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			log.Warn("skipping invalid line", log.Int("line", num),
				log.ErrorField(err))
			continue
		}
		if err := conn.Publish(subject(evt.Type), evt.Data); err != nil {
			return err
		}
		num++
		if evt.Type == "telemetry" && tickDelay > 0 {
			time.Sleep(tickDelay)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := conn.Publish(subject("disconnect"), nil); err != nil {
		return err
	}
	log.Info("replay done", log.Int("events", num))
	return conn.Flush()
}
