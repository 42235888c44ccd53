package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kilianp07/skyops/core/monitoring"
	coremqtt "github.com/kilianp07/skyops/core/mqtt"
)

type recordMonitor struct {
	errs []error
	tags []map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestSendCommandErrorCaptured(t *testing.T) {
	netErr := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{netErr, netErr}}
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	defer func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } }()
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)

	cmd := coremqtt.Command{ID: "cmd-1", Op: coremqtt.OpDroneStatus, Entity: "drone", Key: "D002", Value: "Grounded"}
	_, err = cli.SendCommand(cmd)
	require.ErrorIs(t, err, netErr)

	require.Len(t, mon.errs, 1)
	assert.Equal(t, map[string]string{"module": "mqtt", "op": coremqtt.OpDroneStatus, "entity": "drone", "key": "D002"}, mon.tags[0])

	// The pending ack slot is released on failure.
	_, err = cli.WaitForAck("cmd-1", time.Millisecond)
	assert.ErrorIs(t, err, coremqtt.ErrUnknownCommand)
}
