package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadGameDataMergesPlugins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "heroes.yaml", `
- name: Liu Bei
  faction: shu
  max_hp: 4
  skills: ["rende"]
`)
	writeFile(t, dir, "card_effects.yaml", `
sha:
  display_name: Sha
  needs_target: true
  steps:
    - damage: {amount: 1}
`)
	writeFile(t, dir, "skills.yaml", `
- id: rende
  trigger: active
  steps:
    - log: {message: "rende used"}
`)
	pluginDir := filepath.Join(dir, "plugins")
	if err := os.Mkdir(pluginDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, pluginDir, "extra.json", `[{"id": "jianxiong", "trigger": "after_damaged", "steps": [{"log": {"message": "jianxiong"}}]}]`)

	data, err := LoadGameData(dir)
	if err != nil {
		t.Fatalf("LoadGameData: %v", err)
	}
	if _, ok := data.Heroes["Liu Bei"]; !ok {
		t.Error("expected Liu Bei in heroes")
	}
	if _, ok := data.CardEffects["sha"]; !ok {
		t.Error("expected sha in card effects")
	}
	if _, ok := data.Skills["rende"]; !ok {
		t.Error("expected built-in skill rende")
	}
	if _, ok := data.Skills["jianxiong"]; !ok {
		t.Error("expected plugin skill jianxiong to be merged in")
	}
}

func TestLoadGameDataMissingPluginDirIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "heroes.yaml", `[]`)
	writeFile(t, dir, "card_effects.yaml", `{}`)
	writeFile(t, dir, "skills.yaml", `[]`)

	if _, err := LoadGameData(dir); err != nil {
		t.Fatalf("expected a missing plugins/ dir to be fine, got %v", err)
	}
}

func TestLoadPluginsRejectsBuiltinCollision(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dup.json", `[{"id": "rende", "trigger": "active", "steps": []}]`)

	builtins := map[string]SkillDSLConfig{"rende": {ID: "rende", Trigger: "active"}}
	err := LoadPlugins(dir, builtins, nil)
	if err == nil {
		t.Fatal("expected a plugin id colliding with a built-in to be rejected")
	}
}

func TestLoadHeroesMissingFile(t *testing.T) {
	if _, err := LoadHeroes(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error reading a nonexistent heroes file")
	}
}
