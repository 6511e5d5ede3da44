package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"capestudio/internal/cape"
	"capestudio/internal/config"
	"capestudio/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\noutput_dir = %q\nstaging_dir = %q\ncatalog_path = %q\ndatabase_path = %q\nlog_dir = %q\n\n[proxy]\nbind = %q\n",
		cfg.Paths.OutputDir,
		cfg.Paths.StagingDir,
		cfg.Paths.CatalogPath,
		cfg.Paths.DatabasePath,
		cfg.Paths.LogDir,
		cfg.Proxy.Bind,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func addCape(t *testing.T, env *cliTestEnv, name string) cape.Definition {
	t.Helper()
	texture := testsupport.WriteCapeTexture(t, t.TempDir())
	out, _, err := runCLI(t, []string{"--json", "cape", "add", "--name", name, "--rarity", "epic", "--texture", texture}, env.configPath)
	if err != nil {
		t.Fatalf("cape add: %v", err)
	}
	var def cape.Definition
	if err := json.Unmarshal([]byte(out), &def); err != nil {
		t.Fatalf("decode cape add output %q: %v", out, err)
	}
	return def
}

func TestCLICapeLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	def := addCape(t, env, "Crimson")
	if def.Rarity != cape.RarityEpic || def.Name != "Crimson" {
		t.Fatalf("unexpected cape %+v", def)
	}
	if def.TexturePath != filepath.Join(env.cfg.TexturesDir(), def.ItemID+"_cape.png") {
		t.Fatalf("texture not imported into library: %s", def.TexturePath)
	}

	out, _, err := runCLI(t, []string{"cape", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cape list: %v", err)
	}
	if !strings.Contains(out, "Crimson") || !strings.Contains(out, def.ItemID) {
		t.Fatalf("cape list missing entry: %q", out)
	}

	if _, _, err := runCLI(t, []string{"cape", "set", def.ItemID, "--name", "Scarlet", "--rarity", "legendary"}, env.configPath); err != nil {
		t.Fatalf("cape set: %v", err)
	}
	out, _, err = runCLI(t, []string{"--json", "cape", "show", def.ItemID}, env.configPath)
	if err != nil {
		t.Fatalf("cape show: %v", err)
	}
	var shown cape.Definition
	if err := json.Unmarshal([]byte(out), &shown); err != nil {
		t.Fatalf("decode cape show: %v", err)
	}
	if shown.Name != "Scarlet" || shown.Rarity != cape.RarityLegendary || shown.Description != def.Description {
		t.Fatalf("set did not apply only the changed fields: %+v", shown)
	}

	if _, _, err := runCLI(t, []string{"cape", "set", def.ItemID, "--rarity", "mythic"}, env.configPath); err == nil {
		t.Fatal("expected unknown rarity to fail")
	}
}

func TestCLIGenerateInspectAndRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	def := addCape(t, env, "Crimson")

	if _, _, err := runCLI(t, []string{"generate"}, env.configPath); err != nil {
		t.Fatalf("generate: %v", err)
	}
	archive := filepath.Join(env.cfg.ZipsDir(), def.ItemID+"_primary.zip")
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("expected archive: %v", err)
	}

	out, _, err := runCLI(t, []string{"inspect", archive}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, out)
	}
	if !strings.Contains(out, "signature valid") || !strings.Contains(out, def.PieceUUID) {
		t.Fatalf("unexpected inspect output: %q", out)
	}
	if strings.Contains(out, "Key") && !strings.Contains(out, "********") {
		t.Fatalf("expected masked keys: %q", out)
	}

	out, _, err = runCLI(t, []string{"--json", "catalog", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog show: %v", err)
	}
	var summary struct {
		IDs        []string `json:"ids"`
		TotalItems int      `json:"total_items"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode catalog show: %v", err)
	}
	if len(summary.IDs) != 1 || summary.IDs[0] != def.ItemID || summary.TotalItems != 1 {
		t.Fatalf("unexpected catalog summary %+v", summary)
	}

	if _, _, err := runCLI(t, []string{"cape", "remove", def.ItemID}, env.configPath); err != nil {
		t.Fatalf("cape remove: %v", err)
	}
	if _, err := os.Stat(archive); !os.IsNotExist(err) {
		t.Fatalf("expected archive to be removed, stat err=%v", err)
	}
	out, _, err = runCLI(t, []string{"--json", "catalog", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog show after remove: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode catalog show: %v", err)
	}
	if len(summary.IDs) != 0 || summary.TotalItems != 0 {
		t.Fatalf("expected empty catalog after remove, got %+v", summary)
	}
}

func TestCLIGenerateReportsFailingCape(t *testing.T) {
	env := setupCLITestEnv(t)
	good := addCape(t, env, "Good")
	if _, _, err := runCLI(t, []string{"cape", "add", "--name", "NoTexture"}, env.configPath); err != nil {
		t.Fatalf("cape add: %v", err)
	}

	out, _, err := runCLI(t, []string{"generate"}, env.configPath)
	if err == nil {
		t.Fatal("expected generate to report the failing cape")
	}
	if !strings.Contains(out, "NoTexture") {
		t.Fatalf("expected failing cape to be named: %q", out)
	}
	if _, statErr := os.Stat(filepath.Join(env.cfg.ZipsDir(), good.ItemID+"_primary.zip")); statErr != nil {
		t.Fatalf("good cape should still build: %v", statErr)
	}
}

func TestCLIGenerateWithoutCapes(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"generate"}, env.configPath); err == nil {
		t.Fatal("expected error for empty library")
	}
}

func TestCLIRejectsWrongTextureSize(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"--json", "cape", "add", "--name", "Small"}, env.configPath)
	if err != nil {
		t.Fatalf("cape add: %v", err)
	}
	var def cape.Definition
	if err := json.Unmarshal([]byte(out), &def); err != nil {
		t.Fatalf("decode: %v", err)
	}
	small := testsupport.WriteTexture(t, filepath.Join(t.TempDir(), "small.png"), 16, 16)
	if _, _, err := runCLI(t, []string{"cape", "texture", def.ItemID, small}, env.configPath); err == nil {
		t.Fatal("expected 16x16 texture to be rejected")
	}
	if _, _, err := runCLI(t, []string{"cape", "texture", "--force", def.ItemID, small}, env.configPath); err != nil {
		t.Fatalf("forced import: %v", err)
	}
}

func TestCLIProxyCAPrintsCertificate(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"proxy", "ca"}, env.configPath)
	if err != nil {
		t.Fatalf("proxy ca: %v", err)
	}
	if !strings.Contains(out, "BEGIN CERTIFICATE") {
		t.Fatalf("expected PEM output, got %q", out)
	}
}

func TestCLIStagingClean(t *testing.T) {
	env := setupCLITestEnv(t)
	leftover := filepath.Join(env.cfg.Paths.StagingDir, "crashed", "pack")
	if err := os.MkdirAll(leftover, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	out, _, err := runCLI(t, []string{"staging", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("staging list: %v", err)
	}
	if !strings.Contains(out, "crashed") {
		t.Fatalf("expected leftover in listing: %q", out)
	}

	out, _, err = runCLI(t, []string{"staging", "clean"}, env.configPath)
	if err != nil {
		t.Fatalf("staging clean: %v", err)
	}
	if !strings.Contains(out, "No stale directories") {
		t.Fatalf("fresh directory should survive default clean: %q", out)
	}

	if _, _, err := runCLI(t, []string{"staging", "clean", "--all"}, env.configPath); err != nil {
		t.Fatalf("staging clean --all: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(leftover)); !os.IsNotExist(err) {
		t.Fatalf("expected leftover removed, stat err=%v", err)
	}
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCLIConfigValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, env.configPath) {
		t.Fatalf("unexpected validate output: %q", out)
	}
}
