package config

import (
	"fmt"
	"strings"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// propertiesCodec decodes Java-style properties files for viper.
// Dotted keys become nested maps so that viper's key paths resolve them.
type propertiesCodec struct{}

func (propertiesCodec) Decode(b []byte, v map[string]any) error {
	p, err := properties.Load(b, properties.UTF8)
	if err != nil {
		return fmt.Errorf("parsing properties: %w", err)
	}

	for _, key := range p.Keys() {
		value, _ := p.Get(key)

		setPath(v, strings.Split(key, "."), value)
	}

	return nil
}

func (propertiesCodec) Encode(v map[string]any) ([]byte, error) {
	p := properties.NewProperties()

	if err := flatten(p, "", v); err != nil {
		return nil, err
	}

	return []byte(p.String()), nil
}

// setPath stores value under the nested path, replacing scalars in the way.
func setPath(m map[string]any, path []string, value string) {
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}

		m = next
	}

	m[path[len(path)-1]] = value
}

func flatten(p *properties.Properties, prefix string, m map[string]any) error {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if nested, ok := val.(map[string]any); ok {
			if err := flatten(p, key, nested); err != nil {
				return err
			}

			continue
		}

		if _, _, err := p.Set(key, fmt.Sprint(val)); err != nil {
			return fmt.Errorf("encoding %q: %w", key, err)
		}
	}

	return nil
}

// newViper returns a viper instance that understands the properties format.
func newViper() (*viper.Viper, error) {
	codecs := viper.NewCodecRegistry()

	for _, format := range []string{"properties", "props", "prop"} {
		if err := codecs.RegisterCodec(format, propertiesCodec{}); err != nil {
			return nil, fmt.Errorf("registering %s codec: %w", format, err)
		}
	}

	return viper.NewWithOptions(viper.WithCodecRegistry(codecs)), nil
}
