// Package factory instantiates pluggable modules (snapshot providers, metrics
// sinks, audit stores) from configuration. A module is selected by a type
// string; its raw settings are decoded into a typed struct by the factory
// registered under that type.
//
//	var providers = factory.NewRegistry[provider.Provider]()
//
//	providers.Register("yaml", func(conf map[string]any) (provider.Provider, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return yamlfile.New(c.Path, false)
//	})
//	p, err := providers.Create(factory.ModuleConfig{Type: "yaml", Conf: map[string]any{"path": "roster.yaml"}})
package factory
