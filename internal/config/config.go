// Package config loads the engine's static data files: hero
// definitions, data-driven card effect config, and skill DSL records
// (built-in plus a plugin directory). Grounded on the teacher's
// deck.go (ParseDeckFile, gopkg.in/yaml.v3) YAML-loading idiom,
// generalized from "parse one decks.yaml" to "load a small family of
// config documents plus a plugin directory walk".
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/sanguosha/engine/internal/engerr"
)

// HeroConfig is one hero entry in heroes.yaml.
type HeroConfig struct {
	Name    string   `yaml:"name"`
	Faction string   `yaml:"faction"`
	MaxHP   int      `yaml:"max_hp"`
	Skills  []string `yaml:"skills"`
}

// StepConfig is one step/condition/cost node in a data-driven card
// effect or skill DSL record. It stays a loosely-typed map so the
// interpreter (internal/game, internal/skills) owns the closed
// vocabulary check, matching the source's strict-schema-at-load
// philosophy without duplicating the vocabulary in two packages.
type StepConfig map[string]any

// CardEffectConfig is one entry in card_effects.yaml, the data-driven
// half of the card effect registry (spec.md §4.3).
type CardEffectConfig struct {
	DisplayName  string       `yaml:"display_name"`
	NeedsTarget  bool         `yaml:"needs_target"`
	Condition    []StepConfig `yaml:"condition,omitempty"`
	Scope        string       `yaml:"scope,omitempty"`
	Wuxie        bool         `yaml:"wuxie,omitempty"`
	Steps        []StepConfig `yaml:"steps"`
	DiscardAfter bool         `yaml:"discard_after"`
}

// SkillDSLConfig is one entry in skills.yaml or a plugin JSON file
// (spec.md §4.4). The trigger vocabulary, condition/cost/step
// vocabularies are validated by internal/skills at load time.
type SkillDSLConfig struct {
	ID        string       `yaml:"id" json:"id"`
	Trigger   string       `yaml:"trigger" json:"trigger"`
	Phase     string       `yaml:"phase,omitempty" json:"phase,omitempty"`
	Limit     int          `yaml:"limit,omitempty" json:"limit,omitempty"`
	Condition []StepConfig `yaml:"condition,omitempty" json:"condition,omitempty"`
	Cost      []StepConfig `yaml:"cost,omitempty" json:"cost,omitempty"`
	Target    StepConfig   `yaml:"target,omitempty" json:"target,omitempty"`
	Steps     []StepConfig `yaml:"steps" json:"steps"`
}

// GameData is every static document the engine loads at construction.
type GameData struct {
	Heroes       map[string]*HeroConfig
	CardEffects  map[string]CardEffectConfig
	Skills       map[string]SkillDSLConfig
}

// LoadHeroes parses a heroes.yaml file into a name-keyed map.
func LoadHeroes(path string) (map[string]*HeroConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("read heroes file: %v", err))
	}
	var list []*HeroConfig
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("parse heroes file: %v", err))
	}
	out := make(map[string]*HeroConfig, len(list))
	for _, h := range list {
		out[h.Name] = h
	}
	return out, nil
}

// LoadCardEffects parses card_effects.yaml into a name-keyed map.
func LoadCardEffects(path string) (map[string]CardEffectConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("read card effects file: %v", err))
	}
	var m map[string]CardEffectConfig
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("parse card effects file: %v", err))
	}
	return m, nil
}

// LoadSkillsBuiltin parses skills.yaml (the built-in skill DSL table)
// into an id-keyed map.
func LoadSkillsBuiltin(path string) (map[string]SkillDSLConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("read skills file: %v", err))
	}
	var list []SkillDSLConfig
	if err := yaml.Unmarshal(raw, &list); err != nil {
		return nil, engerr.New(engerr.DataLoadError, fmt.Sprintf("parse skills file: %v", err))
	}
	out := make(map[string]SkillDSLConfig, len(list))
	for _, s := range list {
		out[s.ID] = s
	}
	return out, nil
}

// LoadGameData loads the three fixed-name config documents
// (heroes.yaml, card_effects.yaml, skills.yaml) out of dir, then merges
// any plugin JSON files found under dir/plugins (a missing plugins
// directory is not an error; LoadPlugins already treats os.IsNotExist
// as "no plugins"). Callers needing strict DSL-schema validation on the
// merged skill set should follow up with internal/skills.ValidateAll,
// which config cannot call directly without an import cycle.
func LoadGameData(dir string) (*GameData, error) {
	heroes, err := LoadHeroes(filepath.Join(dir, "heroes.yaml"))
	if err != nil {
		return nil, err
	}
	effects, err := LoadCardEffects(filepath.Join(dir, "card_effects.yaml"))
	if err != nil {
		return nil, err
	}
	skills, err := LoadSkillsBuiltin(filepath.Join(dir, "skills.yaml"))
	if err != nil {
		return nil, err
	}
	if err := LoadPlugins(filepath.Join(dir, "plugins"), skills, func(msg string) {
		log.Warn().Str("dir", dir).Msg(msg)
	}); err != nil {
		return nil, err
	}
	return &GameData{Heroes: heroes, CardEffects: effects, Skills: skills}, nil
}

// LoadPlugins merges plugin-directory JSON skill files into builtins.
// Id collisions with a built-in are rejected with an error (spec.md
// §4.4 "Skill id collisions with built-ins are rejected"); collisions
// among plugins log a warning and the later-loaded file wins
// (directory walk order, lexicographic by filename).
func LoadPlugins(dir string, builtins map[string]SkillDSLConfig, warn func(msg string)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return engerr.New(engerr.DataLoadError, fmt.Sprintf("read plugin dir: %v", err))
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	builtinIDs := make(map[string]bool, len(builtins))
	for id := range builtins {
		builtinIDs[id] = true
	}
	for _, name := range names {
		full := filepath.Join(dir, name)
		skills, err := loadPluginFile(full)
		if err != nil {
			// Non-fatal for an individual plugin file: skip and log.
			if warn != nil {
				warn(fmt.Sprintf("skipping plugin file %s: %v", name, err))
			}
			continue
		}
		for id, s := range skills {
			if builtinIDs[id] {
				return engerr.New(engerr.ConfigurationError, fmt.Sprintf("plugin skill %q collides with a built-in", id))
			}
			if _, exists := builtins[id]; exists && warn != nil {
				warn(fmt.Sprintf("plugin skill %q redefined by %s", id, name))
			}
			builtins[id] = s
		}
	}
	return nil
}

func loadPluginFile(path string) (map[string]SkillDSLConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []SkillDSLConfig
	if err := yamlOrJSON(raw, &list); err != nil {
		return nil, err
	}
	out := make(map[string]SkillDSLConfig, len(list))
	for _, s := range list {
		out[s.ID] = s
	}
	return out, nil
}

// yamlOrJSON unmarshals JSON via yaml.v3 (a superset-compatible parser
// for this use) so plugin files and built-in files share one decode
// path.
func yamlOrJSON(raw []byte, v any) error {
	return yaml.Unmarshal(raw, v)
}
