// Package provider wires the concrete snapshot providers into the factory
// registry so they can be selected from configuration.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/skyops/core/factory"
	coreprovider "github.com/kilianp07/skyops/core/provider"
	"github.com/kilianp07/skyops/infra/logger"
	inframqtt "github.com/kilianp07/skyops/infra/mqtt"
	"github.com/kilianp07/skyops/infra/provider/mqttbus"
	"github.com/kilianp07/skyops/infra/provider/sqlite"
	"github.com/kilianp07/skyops/infra/provider/yamlfile"
)

var registry = factory.NewRegistry[coreprovider.Provider]()

// Register adds a provider factory under name.
func Register(name string, f factory.Factory[coreprovider.Provider]) error {
	return registry.Register(name, f)
}

// New creates the provider described by cfg.
func New(cfg factory.ModuleConfig) (coreprovider.Provider, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("provider type is required (known: %v)", registry.Names())
	}
	return registry.Create(cfg)
}

type yamlConf struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"read_only"`
}

type sqliteConf struct {
	Path string `json:"path"`
	// Seed is a YAML fixture imported when the database holds no rows.
	Seed string `json:"seed"`
}

type mqttConf struct {
	inframqtt.Config `json:",squash"`
	AckTimeout       time.Duration        `json:"ack_timeout"`
	Mirror           bool                 `json:"mirror"`
	Snapshot         factory.ModuleConfig `json:"snapshot"`
}

func init() {
	_ = Register("yaml", func(conf map[string]any) (coreprovider.Provider, error) {
		var c yamlConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("yaml provider: path is required")
		}
		return yamlfile.New(c.Path, c.ReadOnly)
	})
	_ = Register("sqlite", func(conf map[string]any) (coreprovider.Provider, error) {
		var c sqliteConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "skyops.db"
		}
		p, err := sqlite.Open(c.Path)
		if err != nil {
			return nil, err
		}
		if c.Seed != "" {
			if err := seed(p, c.Seed); err != nil {
				_ = p.Close()
				return nil, err
			}
		}
		return p, nil
	})
	_ = Register("mqtt", func(conf map[string]any) (coreprovider.Provider, error) {
		var c mqttConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Snapshot.Type == "" || c.Snapshot.Type == "mqtt" {
			return nil, fmt.Errorf("mqtt provider: snapshot provider type must be set and not mqtt")
		}
		delegate, err := New(c.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("mqtt provider snapshot: %w", err)
		}
		client, err := inframqtt.NewPahoClient(c.Config)
		if err != nil {
			return nil, fmt.Errorf("mqtt provider: %w", err)
		}
		return mqttbus.New(client, delegate,
			mqttbus.WithAckTimeout(c.AckTimeout),
			mqttbus.WithMirror(c.Mirror),
			mqttbus.WithLogger(logger.New("mqttbus")),
		)
	})
}

func seed(p *sqlite.Provider, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	cur, err := p.Load(ctx)
	if err != nil {
		return err
	}
	if len(cur.Pilots)+len(cur.Drones)+len(cur.Missions) > 0 {
		return nil
	}
	snap, err := yamlfile.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return p.Import(ctx, snap)
}
