package console

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/hashicorp/go-hclog"

	"lampcode-go/bus"
)

// Service reads command lines from In and publishes them on Topic. When
// Out is set, every message on Echo is written to it as a JSON line.
type Service struct {
	In    io.Reader
	Out   io.Writer
	Topic bus.Topic
	Echo  bus.Topic
	Log   hclog.Logger
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, lines <-chan string) {
	var echo <-chan *bus.Message
	if s.Out != nil && len(s.Echo) > 0 {
		sub := conn.Subscribe(s.Echo)
		defer conn.Unsubscribe(sub)
		echo = sub.Channel()
	}
	enc := json.NewEncoder(orDiscard(s.Out))

	for {
		select {
		case <-ctx.Done():
			s.Log.Debug("console stopping")
			return
		case line, ok := <-lines:
			if !ok {
				s.Log.Debug("console input closed")
				lines = nil
				continue
			}
			cmd, ok, err := ParseLine(line)
			if err != nil {
				s.Log.Warn("bad command", "line", line, "error", err)
				continue
			}
			if ok {
				conn.Publish(conn.NewMessage(s.Topic, cmd, false))
			}
		case m := <-echo:
			if err := enc.Encode(m.Payload); err != nil {
				s.Log.Warn("echo failed", "error", err)
			}
		}
	}
}

// Start the console service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if s.Log == nil {
		s.Log = hclog.NewNullLogger()
	}
	s.Log = s.Log.Named("console")
	lines := make(chan string, 8)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.In)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := sc.Err(); err != nil {
			s.Log.Error("read failed", "error", err)
		}
	}()
	go s.serviceLoop(ctx, conn, lines)
	return nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
