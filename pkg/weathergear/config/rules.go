package config

import (
	"fmt"
	"sort"

	"github.com/randalmurphal/weathergear/pkg/weathergear/compare"
	"github.com/randalmurphal/weathergear/pkg/weathergear/rules"
)

// Keys read by RuleSet.
const (
	KeyName    = "name"
	KeyAliases = "aliases"
	KeyRules   = "rules"
	KeyWhen    = "when"
)

// Definitions reads a list of {name, when} maps under key.
// A missing key yields no definitions.
func (c Config) Definitions(key string) ([]rules.Definition, error) {
	if !c.Has(key) {
		return nil, nil
	}
	sections := c.Sections(key)
	if sections == nil {
		return nil, fmt.Errorf("%s: expected a list of rule maps", key)
	}

	defs := make([]rules.Definition, 0, len(sections))
	for i, s := range sections {
		def := rules.Definition{
			Name: s.String(KeyName, ""),
			When: s.String(KeyWhen, ""),
		}
		if def.Name == "" {
			return nil, fmt.Errorf("%s[%d]: missing %q", key, i, KeyName)
		}
		if def.When == "" {
			return nil, fmt.Errorf("%s[%d] (%s): missing %q", key, i, def.Name, KeyWhen)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Record converts the map under key into a compare.Record.
// An empty key converts the whole document.
func (c Config) Record(key string) (compare.Record, error) {
	data := c.data
	if key != "" {
		section, ok := c.Section(key)
		if !ok {
			return nil, fmt.Errorf("%s: expected a map of values", key)
		}
		data = section.data
	}
	record, err := compare.RecordOf(data)
	if err != nil && key != "" {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return record, err
}

// RegisterAliases registers each entry of the aliases section on ops under
// the alias symbol, using the function currently registered for its target.
// Aliases are applied in sorted order, so an alias may target one sorted
// before it.
func (c Config) RegisterAliases(ops *compare.OperatorMap) error {
	aliases, err := c.aliasNames()
	if err != nil {
		return err
	}

	section, _ := c.Section(KeyAliases)
	for _, alias := range aliases {
		target := section.String(alias, "")
		fn, ok := ops.Lookup(target)
		if !ok {
			return fmt.Errorf("%s.%s: %w", KeyAliases, alias, &compare.UnknownOperatorError{Operator: target})
		}
		ops.Register(alias, fn)
	}
	return nil
}

// aliasNames returns the sorted alias symbols of the aliases section.
func (c Config) aliasNames() ([]string, error) {
	section, ok := c.Section(KeyAliases)
	if !ok {
		if c.Has(KeyAliases) {
			return nil, fmt.Errorf("%s: expected a map of alias to operator", KeyAliases)
		}
		return nil, nil
	}

	aliases := make([]string, 0, len(section.data))
	for alias := range section.data {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases, nil
}

// RuleSet compiles the document into a rules.Set using ops.
// The document needs a name and a rules list; aliases are optional.
//
// Aliases are registered on ops only when the whole set compiles. On error
// ops is unchanged.
func (c Config) RuleSet(ops *compare.OperatorMap) (*rules.Set, error) {
	name := c.String(KeyName, "")
	if name == "" {
		return nil, fmt.Errorf("rule set: missing %q", KeyName)
	}

	scratch := ops.Clone()
	if err := c.RegisterAliases(scratch); err != nil {
		return nil, fmt.Errorf("rule set %s: %w", name, err)
	}
	defs, err := c.Definitions(KeyRules)
	if err != nil {
		return nil, fmt.Errorf("rule set %s: %w", name, err)
	}
	set, err := rules.Compile(name, defs, scratch)
	if err != nil {
		return nil, err
	}

	aliases, _ := c.aliasNames()
	for _, alias := range aliases {
		fn, _ := scratch.Lookup(alias)
		ops.Register(alias, fn)
	}
	return set, nil
}
