package routeguard

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RulesFile is the on-disk form of the path-matching configuration:
//
//	rules:
//	  - pattern: /static/**
//	    kind: bypass
//	  - pattern: /test
//	protected:
//	  - /dashboard/**
//
// kind defaults to bypass.
type RulesFile struct {
	Rules     []Rule
	Protected []string
}

type rulesDoc struct {
	Rules []struct {
		Pattern string `yaml:"pattern"`
		Kind    string `yaml:"kind"`
	} `yaml:"rules"`
	Protected []string `yaml:"protected"`
}

// ReadRules parses a RulesFile. Patterns are validated later by New.
func ReadRules(r io.Reader) (RulesFile, error) {
	var doc rulesDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return RulesFile{}, nil
		}
		return RulesFile{}, fmt.Errorf("decode guard rules: %w", err)
	}

	out := RulesFile{Protected: doc.Protected}
	for i, r := range doc.Rules {
		kind, err := ParseRuleKind(r.Kind)
		if err != nil {
			return RulesFile{}, fmt.Errorf("guard rule %d: %w", i, err)
		}
		out.Rules = append(out.Rules, Rule{Pattern: strings.TrimSpace(r.Pattern), Kind: kind})
	}
	return out, nil
}

// LoadRulesFile reads a RulesFile from disk.
func LoadRulesFile(name string) (RulesFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return RulesFile{}, err
	}
	defer f.Close()
	return ReadRules(f)
}

// BypassRules builds bypass rules from a list of patterns.
func BypassRules(patterns []string) []Rule {
	out := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, Rule{Pattern: p, Kind: RuleBypass})
		}
	}
	return out
}
