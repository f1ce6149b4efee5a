package bridge

import (
	"context"
	"errors"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	qos          = 1
	tokenTimeout = 5 * time.Second
)

// pahoClient adapts paho to Client. Reconnects are left to the bridge
// supervisor so link state is reported in one place.
type pahoClient struct {
	c      mqtt.Client
	status string
	lost   chan error
}

func dialPaho(cfg Config) Client {
	p := &pahoClient{status: cfg.base() + "/status", lost: make(chan error, 1)}

	id := cfg.ClientID
	if id == "" {
		id = cfg.base() + "-" + uuid.NewString()[:8]
	}
	keep := time.Duration(cfg.KeepAliveS) * time.Second
	if keep <= 0 {
		keep = 30 * time.Second
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(id).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetKeepAlive(keep).
		SetWill(p.status, "offline", qos, true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			select {
			case p.lost <- err:
			default:
			}
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	p.c = mqtt.NewClient(opts)
	return p
}

func wait(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(tokenTimeout):
		return errors.New("mqtt: timed out")
	}
}

func (p *pahoClient) Connect(ctx context.Context) error {
	if err := wait(ctx, p.c.Connect()); err != nil {
		return err
	}
	return p.Publish(p.status, []byte("online"), true)
}

func (p *pahoClient) Subscribe(filter string, fn func(topic string, payload []byte)) error {
	tok := p.c.Subscribe(filter, qos, func(_ mqtt.Client, m mqtt.Message) {
		fn(m.Topic(), m.Payload())
	})
	return wait(context.Background(), tok)
}

func (p *pahoClient) Publish(topic string, payload []byte, retained bool) error {
	return wait(context.Background(), p.c.Publish(topic, qos, retained, payload))
}

func (p *pahoClient) Lost() <-chan error { return p.lost }

func (p *pahoClient) Disconnect() {
	if p.c.IsConnected() {
		_ = p.Publish(p.status, []byte("offline"), true)
	}
	p.c.Disconnect(250)
}
