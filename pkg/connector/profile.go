package connector

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Profile is one named connection entry: an engine tag plus its Config.
type Profile struct {
	Type   string `mapstructure:"type"`
	Config Config `mapstructure:",squash"`
}

// LoadProfiles reads named connection profiles from a YAML file of the form:
//
//	profiles:
//	  analytics:
//	    type: clickhouse
//	    host: ch.internal
//	    username: reader
//
// Field names match Config's map keys, so a profile and a map passed to
// NewFromMap are interchangeable.
func LoadProfiles(path string) (map[string]Profile, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	return unmarshalProfiles(k)
}

// ProfilesFromMap builds named connection profiles from an already-parsed
// configuration tree, for hosts that manage their own config loading.
func ProfilesFromMap(m map[string]any) (map[string]Profile, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]any{"profiles": m}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return unmarshalProfiles(k)
}

func unmarshalProfiles(k *koanf.Koanf) (map[string]Profile, error) {
	var out map[string]Profile
	if err := k.UnmarshalWithConf("profiles", &out, koanf.UnmarshalConf{Tag: "mapstructure"}); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	if out == nil {
		out = map[string]Profile{}
	}
	return out, nil
}

// Connect builds a connector from a profile via the registry.
func (p Profile) Connect() (Connector, error) {
	return New(p.Type, p.Config, nil)
}
