package types

import (
	"encoding/json"
	"fmt"
)

// object decodes data as a JSON object. ok is false for any other value,
// null included.
func object(data []byte) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// takeString moves key out of obj into dst when it holds a non-empty string.
// Any other value, including "" and null, stays in obj and is written back
// verbatim.
func takeString(obj map[string]json.RawMessage, key string, dst *string) {
	raw, ok := obj[key]
	if !ok {
		return
	}
	var s string
	if json.Unmarshal(raw, &s) != nil || s == "" {
		return
	}
	*dst = s
	delete(obj, key)
}

func leftover(obj map[string]json.RawMessage) map[string]json.RawMessage {
	if len(obj) == 0 {
		return nil
	}
	return obj
}

// newObject starts an output object from a copy of extra.
func newObject(extra map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(extra)+5)
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func putString(out map[string]json.RawMessage, key, value string) error {
	if value == "" {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	out[key] = raw
	return nil
}

func keep(data []byte) json.RawMessage {
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return raw
}

func (e *PluginEntry) UnmarshalJSON(data []byte) error {
	obj, ok := object(data)
	if !ok {
		*e = PluginEntry{Raw: keep(data)}
		return nil
	}
	var out PluginEntry
	takeString(obj, "scope", &out.Scope)
	takeString(obj, "version", &out.Version)
	takeString(obj, "installedAt", &out.InstalledAt)
	takeString(obj, "lastUpdated", &out.LastUpdated)
	takeString(obj, "installPath", &out.InstallPath)
	out.Extra = leftover(obj)
	*e = out
	return nil
}

func (e PluginEntry) MarshalJSON() ([]byte, error) {
	if e.Raw != nil {
		return e.Raw, nil
	}
	out := newObject(e.Extra)
	for key, value := range map[string]string{
		"scope":       e.Scope,
		"version":     e.Version,
		"installedAt": e.InstalledAt,
		"lastUpdated": e.LastUpdated,
		"installPath": e.InstallPath,
	} {
		if err := putString(out, key, value); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON requires an object at the top level. Within plugins, every
// key is decoded on its own so one odd record cannot hide the others.
func (p *PluginsData) UnmarshalJSON(data []byte) error {
	obj, ok := object(data)
	if !ok {
		return fmt.Errorf("expected JSON object")
	}
	var out PluginsData
	if members, isObject := object(obj["plugins"]); isObject {
		delete(obj, "plugins")
		out.Plugins = make(map[string][]PluginEntry, len(members))
		for key, raw := range members {
			var entries []PluginEntry
			if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
				if out.Malformed == nil {
					out.Malformed = map[string]json.RawMessage{}
				}
				out.Malformed[key] = raw
			}
			out.Plugins[key] = entries
		}
	}
	out.Extra = leftover(obj)
	*p = out
	return nil
}

func (p PluginsData) MarshalJSON() ([]byte, error) {
	out := newObject(p.Extra)
	if p.Plugins != nil {
		members := make(map[string]json.RawMessage, len(p.Plugins))
		for key, entries := range p.Plugins {
			if raw, ok := p.Malformed[key]; ok {
				members[key] = raw
				continue
			}
			raw, err := json.Marshal(entries)
			if err != nil {
				return nil, err
			}
			members[key] = raw
		}
		raw, err := json.Marshal(members)
		if err != nil {
			return nil, err
		}
		out["plugins"] = raw
	}
	return json.Marshal(out)
}

func (m *MarketplaceEntry) UnmarshalJSON(data []byte) error {
	obj, ok := object(data)
	if !ok {
		*m = MarketplaceEntry{Raw: keep(data)}
		return nil
	}
	var out MarketplaceEntry
	if raw, present := obj["source"]; present {
		if _, isObject := object(raw); isObject {
			var src MarketplaceSource
			if err := json.Unmarshal(raw, &src); err != nil {
				return fmt.Errorf("field %q: %w", "source", err)
			}
			out.Source = &src
			delete(obj, "source")
		}
	}
	takeString(obj, "installLocation", &out.InstallLocation)
	takeString(obj, "lastUpdated", &out.LastUpdated)
	out.Extra = leftover(obj)
	*m = out
	return nil
}

func (m MarketplaceEntry) MarshalJSON() ([]byte, error) {
	if m.Raw != nil {
		return m.Raw, nil
	}
	out := newObject(m.Extra)
	if m.Source != nil {
		raw, err := json.Marshal(m.Source)
		if err != nil {
			return nil, err
		}
		out["source"] = raw
	}
	if err := putString(out, "installLocation", m.InstallLocation); err != nil {
		return nil, err
	}
	if err := putString(out, "lastUpdated", m.LastUpdated); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (s *MarketplaceSource) UnmarshalJSON(data []byte) error {
	obj, ok := object(data)
	if !ok {
		return fmt.Errorf("expected JSON object")
	}
	var out MarketplaceSource
	takeString(obj, "source", &out.Source)
	takeString(obj, "repo", &out.Repo)
	takeString(obj, "url", &out.URL)
	out.Extra = leftover(obj)
	*s = out
	return nil
}

func (s MarketplaceSource) MarshalJSON() ([]byte, error) {
	out := newObject(s.Extra)
	if err := putString(out, "source", s.Source); err != nil {
		return nil, err
	}
	if err := putString(out, "repo", s.Repo); err != nil {
		return nil, err
	}
	if err := putString(out, "url", s.URL); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (s *SettingsData) UnmarshalJSON(data []byte) error {
	obj, ok := object(data)
	if !ok {
		return fmt.Errorf("expected JSON object")
	}
	var out SettingsData
	if members, isObject := object(obj["enabledPlugins"]); isObject {
		out.EnabledPlugins = make(map[string]bool, len(members))
		for key, value := range members {
			var enabled bool
			if json.Unmarshal(value, &enabled) == nil {
				out.EnabledPlugins[key] = enabled
			}
		}
	}
	*s = out
	return nil
}
