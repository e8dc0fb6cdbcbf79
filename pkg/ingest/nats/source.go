// Package nats attaches the fuel orchestrator to a NATS subject tree.
// All subscriptions funnel into one internal event channel so telemetry
// ticks, session info updates and connect/disconnect signals are
// processed strictly in arrival order by a single goroutine.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/log"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/processing/fuel"
)

type eventKind int

const (
	eventTelemetry eventKind = iota
	eventSessionInfo
	eventConnect
	eventDisconnect
)

type event struct {
	kind eventKind
	data []byte
}

type (
	Source struct {
		ctx           context.Context
		conn          *nats.Conn
		orchestrator  *fuel.Orchestrator
		l             *log.Logger
		subjectPrefix string
		events        chan event
		snapshots     chan *model.FuelSnapshot
		subs          []*nats.Subscription
		closeOnce     sync.Once
		done          chan struct{}
	}
	Option func(*Source)
)

func WithContext(ctx context.Context) Option {
	return func(s *Source) { s.ctx = ctx }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Source) { s.l = l }
}

// WithSubjectPrefix sets the first subject token, default "ifs".
func WithSubjectPrefix(prefix string) Option {
	return func(s *Source) { s.subjectPrefix = prefix }
}

//nolint:whitespace // editor/linter issue
func NewSource(
	conn *nats.Conn,
	orchestrator *fuel.Orchestrator,
	opts ...Option,
) (*Source, error) {
	ret := &Source{
		ctx:           context.Background(),
		conn:          conn,
		orchestrator:  orchestrator,
		l:             log.Default().Named("ingest.nats"),
		subjectPrefix: "ifs",
		events:        make(chan event, 64),
		snapshots:     make(chan *model.FuelSnapshot),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if err := ret.setupSubscriptions(); err != nil {
		return nil, err
	}
	go ret.serve()
	return ret, nil
}

// Snapshots delivers one view snapshot per processed tick.
func (s *Source) Snapshots() <-chan *model.FuelSnapshot {
	return s.snapshots
}

func (s *Source) setupSubscriptions() error {
	subscribe := func(suffix string, kind eventKind) error {
		subject := fmt.Sprintf("%s.%s", s.subjectPrefix, suffix)
		sub, err := s.conn.Subscribe(subject, func(msg *nats.Msg) {
			select {
			case s.events <- event{kind: kind, data: msg.Data}:
			case <-s.done:
			}
		})
		if err != nil {
			return err
		}
		s.subs = append(s.subs, sub)
		return nil
	}
	for _, item := range []struct {
		suffix string
		kind   eventKind
	}{
		{"telemetry", eventTelemetry},
		{"sessioninfo", eventSessionInfo},
		{"connect", eventConnect},
		{"disconnect", eventDisconnect},
	} {
		if err := subscribe(item.suffix, item.kind); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) serve() {
	defer close(s.snapshots)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.done:
			return
		case evt := <-s.events:
			snap := s.dispatch(evt)
			if snap == nil {
				continue
			}
			// the consumer may already be gone during teardown
			select {
			case s.snapshots <- snap:
			case <-s.ctx.Done():
				return
			case <-s.done:
				return
			}
		}
	}
}

func (s *Source) dispatch(evt event) *model.FuelSnapshot {
	switch evt.kind {
	case eventTelemetry:
		var sample model.TelemetrySample
		if err := json.Unmarshal(evt.data, &sample); err != nil {
			s.l.Warn("invalid telemetry payload", log.ErrorField(err))
			return nil
		}
		return s.orchestrator.ProcessTelemetry(&sample)
	case eventSessionInfo:
		if err := s.orchestrator.ProcessSessionInfo(s.ctx, evt.data); err != nil {
			s.l.Warn("invalid session info payload", log.ErrorField(err))
		}
		return nil
	case eventConnect:
		s.l.Info("telemetry source connected")
		return s.orchestrator.OnConnect(s.ctx)
	case eventDisconnect:
		s.l.Info("telemetry source disconnected")
		return s.orchestrator.OnDisconnect(s.ctx)
	}
	return nil
}

// Close detaches exactly the subscriptions that were attached and stops
// the event loop. Safe to call more than once.
func (s *Source) Close() {
	s.closeOnce.Do(func() {
		for _, sub := range s.subs {
			if err := sub.Unsubscribe(); err != nil {
				s.l.Warn("unsubscribe failed",
					log.String("subject", sub.Subject),
					log.ErrorField(err))
			}
		}
		s.subs = nil
		close(s.done)
	})
}
