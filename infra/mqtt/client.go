package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/skyops/auth"
	coremon "github.com/kilianp07/skyops/core/monitoring"
	coremqtt "github.com/kilianp07/skyops/core/mqtt"
	"github.com/kilianp07/skyops/infra/logger"
)

// DefaultTopicPrefix roots command topics when none is configured.
const DefaultTopicPrefix = "skyops"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	TopicPrefix string          `json:"topic_prefix"`
	AckTopic    string          `json:"ack_topic"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	AuthMethod  string          `json:"auth_method"`
	OAuth       auth.Conf       `json:"oauth"`
	QoS         map[string]byte `json:"qos"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient implements core mqtt.Client using Eclipse Paho. Commands go to
// <prefix>/<entity>/<key>/command and acks arrive on a single ack topic.
type PahoClient struct {
	cli      pahoClient
	prefix   string
	ackTopic string
	qos      map[string]byte

	mu         sync.Mutex
	ackChans   map[string]chan coremqtt.Ack
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the ack topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	ackTopic := cfg.AckTopic
	if ackTopic == "" {
		ackTopic = prefix + "/ack"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	backoff := time.Duration(cfg.BackoffMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		prefix:     prefix,
		ackTopic:   ackTopic,
		ackChans:   make(map[string]chan coremqtt.Ack),
		logger:     log,
		qos:        cfg.QoS,
		maxRetries: maxRetries,
		backoff:    backoff,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(pc.ackTopic, pc.qosFor("ack"), pc.onAck); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.AuthMethod == "oauth2" {
		if err := cfg.OAuth.Validate(); err != nil {
			return nil, err
		}
		// The access token is the password; it is fetched again on reconnect
		// once expired.
		cred := auth.NewClientCred(cfg.OAuth)
		username := cfg.Username
		if username == "" {
			username = cfg.OAuth.ClientID
		}
		opts.SetCredentialsProvider(func() (string, string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			tok, err := cred.GetToken(ctx)
			if err != nil {
				coremon.CaptureException(err, map[string]string{"module": "mqtt", "op": "oauth2"})
				return username, ""
			}
			return username, tok
		})
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// CommandTopic returns the topic a command for entity/key is published on.
func (p *PahoClient) CommandTopic(entity, key string) string {
	return fmt.Sprintf("%s/%s/%s/command", p.prefix, entity, key)
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

func (p *PahoClient) onAck(_ paho.Client, msg paho.Message) {
	var ack coremqtt.Ack
	if err := json.Unmarshal(msg.Payload(), &ack); err != nil {
		p.logger.Errorf("failed to decode ack: %v", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.ackChans[ack.CommandID]
	if !ok {
		return
	}
	select {
	case ch <- ack:
	default:
	}
	p.logger.Debugf("received ack %s ok=%t", ack.CommandID, ack.OK)
}

// SendCommand publishes cmd, retrying with exponential backoff, and returns
// the command identifier used for acknowledgment tracking.
func (p *PahoClient) SendCommand(cmd coremqtt.Command) (string, error) {
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	if cmd.Timestamp == 0 {
		cmd.Timestamp = time.Now().UnixMilli()
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}

	// Register before publishing so a fast ack is not lost.
	p.mu.Lock()
	p.ackChans[cmd.ID] = make(chan coremqtt.Ack, 1)
	p.mu.Unlock()

	topic := p.CommandTopic(cmd.Entity, cmd.Key)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qosFor("command"), false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infof("sent %s command %s to %s", cmd.Op, cmd.ID, topic)
			return cmd.ID, nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	p.forget(cmd.ID)
	coremon.CaptureException(publishErr, map[string]string{
		"module": "mqtt", "op": cmd.Op, "entity": cmd.Entity, "key": cmd.Key,
	})
	return "", publishErr
}

// WaitForAck blocks until the ack for commandID arrives or timeout.
func (p *PahoClient) WaitForAck(commandID string, timeout time.Duration) (coremqtt.Ack, error) {
	p.mu.Lock()
	ch := p.ackChans[commandID]
	p.mu.Unlock()
	if ch == nil {
		return coremqtt.Ack{}, fmt.Errorf("%w: %s", coremqtt.ErrUnknownCommand, commandID)
	}
	defer p.forget(commandID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ack := <-ch:
		return ack, nil
	case <-timer.C:
		return coremqtt.Ack{CommandID: commandID}, fmt.Errorf("%w: %s", coremqtt.ErrAckTimeout, commandID)
	}
}

// Close disconnects from the broker, letting in-flight publishes finish.
func (p *PahoClient) Close() error {
	if p.cli != nil {
		p.cli.Disconnect(250)
	}
	return nil
}

func (p *PahoClient) forget(commandID string) {
	p.mu.Lock()
	delete(p.ackChans, commandID)
	p.mu.Unlock()
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
