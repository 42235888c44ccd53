// Package mqttbus forwards mutations as MQTT commands and treats the
// receiver's acknowledgment as the commit. Snapshots come from a delegate
// provider.
package mqttbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/skyops/core/logger"
	coremqtt "github.com/kilianp07/skyops/core/mqtt"
	"github.com/kilianp07/skyops/core/provider"
)

// ErrRejected is returned when the receiver acknowledges a command with a
// failure.
var ErrRejected = errors.New("command rejected")

// DefaultAckTimeout applies when the context carries no deadline and no
// timeout was configured.
const DefaultAckTimeout = 5 * time.Second

// Provider implements provider.Provider over a command bus.
type Provider struct {
	client     coremqtt.Client
	snapshot   provider.Provider
	ackTimeout time.Duration
	mirror     bool
	log        logger.Logger
}

// Option configures the provider.
type Option func(*Provider)

// WithAckTimeout bounds the wait for each acknowledgment.
func WithAckTimeout(d time.Duration) Option { return func(p *Provider) { p.ackTimeout = d } }

// WithMirror also applies acknowledged mutations to the snapshot delegate,
// for setups where the receiver does not share storage with it.
func WithMirror(on bool) Option { return func(p *Provider) { p.mirror = on } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(p *Provider) { p.log = logger.OrNop(l) } }

// New returns a provider publishing through client and loading from snapshot.
func New(client coremqtt.Client, snapshot provider.Provider, opts ...Option) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("mqttbus: nil client")
	}
	if snapshot == nil {
		return nil, fmt.Errorf("mqttbus: nil snapshot provider")
	}
	p := &Provider{client: client, snapshot: snapshot, ackTimeout: DefaultAckTimeout, log: logger.Nop{}}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Load delegates to the snapshot provider.
func (p *Provider) Load(ctx context.Context) (provider.Snapshot, error) {
	return p.snapshot.Load(ctx)
}

func (p *Provider) UpdatePilotStatus(ctx context.Context, name, status string) error {
	cmd := coremqtt.Command{Op: coremqtt.OpPilotStatus, Entity: "pilot", Key: name, Value: status}
	return p.send(ctx, cmd, func(ctx context.Context) error { return p.snapshot.UpdatePilotStatus(ctx, name, status) })
}

func (p *Provider) UpdateDroneStatus(ctx context.Context, id, status string) error {
	cmd := coremqtt.Command{Op: coremqtt.OpDroneStatus, Entity: "drone", Key: id, Value: status}
	return p.send(ctx, cmd, func(ctx context.Context) error { return p.snapshot.UpdateDroneStatus(ctx, id, status) })
}

func (p *Provider) UpdatePilotAssignment(ctx context.Context, name, missionID string) error {
	cmd := coremqtt.Command{Op: coremqtt.OpPilotAssignment, Entity: "pilot", Key: name, Value: missionID}
	return p.send(ctx, cmd, func(ctx context.Context) error { return p.snapshot.UpdatePilotAssignment(ctx, name, missionID) })
}

func (p *Provider) UpdateDroneAssignment(ctx context.Context, id, missionID string) error {
	cmd := coremqtt.Command{Op: coremqtt.OpDroneAssignment, Entity: "drone", Key: id, Value: missionID}
	return p.send(ctx, cmd, func(ctx context.Context) error { return p.snapshot.UpdateDroneAssignment(ctx, id, missionID) })
}

// Close closes the client and the delegate when they hold resources.
func (p *Provider) Close() error {
	var errs []error
	if c, ok := p.client.(provider.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := p.snapshot.(provider.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func (p *Provider) send(ctx context.Context, cmd coremqtt.Command, mirror func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := p.client.SendCommand(cmd)
	if err != nil {
		return fmt.Errorf("mqttbus: send %s %s: %w", cmd.Op, cmd.Key, err)
	}
	ack, err := p.client.WaitForAck(id, p.timeout(ctx))
	if err != nil {
		return fmt.Errorf("mqttbus: %s %s: %w", cmd.Op, cmd.Key, err)
	}
	if !ack.OK {
		return fmt.Errorf("mqttbus: %s %s: %w: %s", cmd.Op, cmd.Key, ErrRejected, ack.Error)
	}
	p.log.Debugf("mqttbus: %s %s=%q acknowledged (%s)", cmd.Op, cmd.Key, cmd.Value, id)
	if p.mirror {
		if err := mirror(ctx); err != nil {
			return fmt.Errorf("mqttbus: mirror %s %s: %w", cmd.Op, cmd.Key, err)
		}
	}
	return nil
}

func (p *Provider) timeout(ctx context.Context) time.Duration {
	d := p.ackTimeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < d || d <= 0 {
			d = left
		}
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}
