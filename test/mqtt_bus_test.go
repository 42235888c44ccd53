//go:build !no_containers

package test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyops/core/engine"
	"github.com/kilianp07/skyops/core/model"
	coremqtt "github.com/kilianp07/skyops/core/mqtt"
	"github.com/kilianp07/skyops/core/provider"
	"github.com/kilianp07/skyops/infra/mqtt"
	"github.com/kilianp07/skyops/infra/provider/mqttbus"
	"github.com/kilianp07/skyops/infra/provider/yamlfile"
	"github.com/kilianp07/skyops/test/util"
)

func startBroker(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("container test skipped in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	t.Cleanup(cleanup)
	return broker
}

func newBusEngine(t *testing.T, broker string, mem *provider.Memory) *engine.Engine {
	t.Helper()
	client, err := mqtt.NewPahoClient(mqtt.Config{
		Broker:   broker,
		ClientID: fmt.Sprintf("skyops-test-%d", time.Now().UnixNano()),
	})
	require.NoError(t, err)
	bus, err := mqttbus.New(client, mem, mqttbus.WithAckTimeout(3*time.Second), mqttbus.WithMirror(true))
	require.NoError(t, err)
	eng, err := engine.New(bus, engine.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	_, err = eng.Refresh(context.Background())
	require.NoError(t, err)
	return eng
}

func fixture(t *testing.T) provider.Snapshot {
	t.Helper()
	snap, err := yamlfile.ReadFile(filepath.Join("..", "testdata", "snapshot.yaml"))
	require.NoError(t, err)
	return snap
}

func TestMQTTBusAssignmentAcknowledged(t *testing.T) {
	broker := startBroker(t)
	responder, err := util.AckResponder(broker, mqtt.DefaultTopicPrefix, mqtt.DefaultTopicPrefix+"/ack", nil)
	require.NoError(t, err)
	defer responder.Disconnect(100)

	mem := provider.NewMemory(fixture(t))
	eng := newBusEngine(t, broker, mem)

	res, err := eng.AssignPilot(context.Background(), "Neha", "PRJ002")
	require.NoError(t, err)
	assert.Equal(t, []string{"assignment", "status"}, res.Committed)

	p, ok := eng.Snapshot().Pilot("Neha")
	require.True(t, ok)
	assert.Equal(t, model.PilotOnMission, p.Status)

	// The mirror applied the acknowledged commands to the delegate.
	snap, err := mem.Load(context.Background())
	require.NoError(t, err)
	for _, row := range snap.Pilots {
		if row[provider.ColName] == "Neha" {
			assert.Equal(t, "PRJ002", row[provider.ColCurrentAssignment])
		}
	}
}

func TestMQTTBusRejectedCommandFailsClosed(t *testing.T) {
	broker := startBroker(t)
	responder, err := util.AckResponder(broker, mqtt.DefaultTopicPrefix, mqtt.DefaultTopicPrefix+"/ack",
		func(c coremqtt.Command) coremqtt.Ack {
			if c.Op == coremqtt.OpDroneStatus {
				return coremqtt.Ack{CommandID: c.ID, Error: "drone locked"}
			}
			return coremqtt.Ack{CommandID: c.ID, OK: true}
		})
	require.NoError(t, err)
	defer responder.Disconnect(100)

	eng := newBusEngine(t, broker, provider.NewMemory(fixture(t)))
	before := eng.Snapshot()

	_, err = eng.UpdateDroneStatus(context.Background(), "D002", model.DroneMaintenance)
	require.ErrorIs(t, err, engine.ErrProvider)
	require.ErrorIs(t, err, mqttbus.ErrRejected)

	d, ok := eng.Snapshot().Drone("D002")
	require.True(t, ok)
	prev, _ := before.Drone("D002")
	assert.Equal(t, prev.Status, d.Status)
}

func TestMQTTBusAckTimeout(t *testing.T) {
	broker := startBroker(t)
	mem := provider.NewMemory(fixture(t))
	eng := newBusEngine(t, broker, mem)
	before, _ := eng.Snapshot().Pilot("Arjun")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := eng.UpdatePilotStatus(ctx, "Arjun", model.PilotUnavailable)
	require.ErrorIs(t, err, coremqtt.ErrAckTimeout)

	p, ok := eng.Snapshot().Pilot("Arjun")
	require.True(t, ok)
	assert.Equal(t, before.Status, p.Status)
}
