/*
Package config reads rule sets and forecast records from YAML or JSON.

# Overview

Config wraps a map[string]any and provides typed accessors that return a
default value when a key is missing or holds the wrong type. On top of the
accessors sit the weathergear-specific readers: Definitions, Record, and
RuleSet.

# Rule Set Files

	name: commute
	aliases:
	  at_least: ">="
	rules:
	  - name: umbrella
	    when: precipitation at_least 40
	  - name: sunglasses
	    when: sky == clear

Load and compile one:

	cfg, err := config.FromFile("commute.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	set, err := cfg.RuleSet(ops)

Each alias registers an existing operator's function on ops under a new
symbol before the rules are compiled.

# Forecast Files

	temperature: 8.5
	precipitation: 55
	sky: overcast

	cfg, _ := config.FromFile("today.yaml")
	record, err := cfg.Record("")

Record accepts numbers and strings only. Booleans, lists, and nested maps are
rejected with compare.ErrUnsupportedValue.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
