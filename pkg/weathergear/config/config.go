package config

// Config wraps a map[string]any for type-safe value extraction.
// Accessors return the default value if the key is missing
// or holds a value of another type.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return defaultVal
}

// Float returns the numeric value for key as a float64, or defaultVal.
// YAML integers are accepted.
func (c Config) Float(key string, defaultVal float64) float64 {
	switch val := c.data[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (c Config) Bool(key string, defaultVal bool) bool {
	if b, ok := c.data[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Section returns the nested map under key as a Config.
// ok is false if key is missing or does not hold a map.
func (c Config) Section(key string) (Config, bool) {
	m, ok := asMap(c.data[key])
	if !ok {
		return Config{}, false
	}
	return New(m), true
}

// Sections returns a list of maps under key, one Config per element.
// Returns nil if key is missing, is not a list, or holds a non-map element.
func (c Config) Sections(key string) []Config {
	list, ok := c.data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Config, 0, len(list))
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			return nil
		}
		out = append(out, New(m))
	}
	return out
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Raw returns the underlying map.
// The returned map should not be modified.
func (c Config) Raw() map[string]any {
	return c.data
}

// asMap accepts the map shapes produced by yaml.v3 and encoding/json.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Config:
		return m.data, true
	}
	return nil, false
}
