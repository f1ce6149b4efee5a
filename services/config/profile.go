package config

import (
	"encoding/json"
	"fmt"

	"lampcode-go/x/strx"
)

// EmbeddedConfigLookup allows overriding how profiles are resolved.
var EmbeddedConfigLookup = func(profile string) ([]byte, bool) {
	b, ok := embeddedConfigs[profile]
	return b, ok
}

// Profile is a decoded board profile.
type Profile struct {
	Name     string
	Device   Device
	Sections map[string]any
}

// LoadProfile resolves name (DefaultProfile when empty) and overlays its
// device section on the built-in configuration.
func LoadProfile(name string) (Profile, error) {
	name = strx.Coalesce(name, DefaultProfile)
	raw, ok := EmbeddedConfigLookup(name)
	if !ok || len(raw) == 0 {
		return Profile{}, fmt.Errorf("no embedded config for profile %q", name)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return Profile{}, fmt.Errorf("profile %q: %w", name, err)
	}
	p := Profile{Name: name, Device: Builtin(), Sections: map[string]any{}}
	for k, v := range top {
		if k == "device" {
			if err := json.Unmarshal(v, &p.Device); err != nil {
				return Profile{}, fmt.Errorf("profile %q device: %w", name, err)
			}
			continue
		}
		var sec any
		if err := json.Unmarshal(v, &sec); err != nil {
			return Profile{}, fmt.Errorf("profile %q section %s: %w", name, k, err)
		}
		p.Sections[k] = sec
	}
	p.Device.Clamp()
	return p, nil
}
