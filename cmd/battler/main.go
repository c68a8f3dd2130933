// Command battler is the CLI entrypoint for the deterministic turn-based
// battle engine: it can run the HTTP/WebSocket control surface
// (goldbox-rpg/pkg/server) or resolve one scripted test case headlessly
// against the Effect Dispatch Core (goldbox-rpg/pkg/battle) directly,
// printing the resulting battle log to stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"goldbox-rpg/pkg/battle"
	"goldbox-rpg/pkg/config"
	"goldbox-rpg/pkg/server"
)

var cli struct {
	Serve serveCmd `cmd:"" help:"Start the HTTP/WebSocket control surface."`
	Run   runCmd   `cmd:"" help:"Resolve one scripted test case headlessly and print its battle log."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("battler"),
		kong.Description("Deterministic, data-driven turn-based battle engine."),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

// serveCmd starts the same daemon goldbox-rpg/cmd/server does; kept here
// too so operators have one binary for both the daemon and the headless
// test-case runner.
type serveCmd struct{}

func (c *serveCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	srv := server.NewServer(cfg)
	logrus.WithField("port", cfg.ServerPort).Info("battler control surface listening")
	return http.ListenAndServe(fmt.Sprintf(":%d", cfg.ServerPort), srv.Handler())
}

// runCmd loads a scripted test case from cfg.TestCaseDir — a fixed team
// roster per player plus a sequence of per-turn choices, spec.md's
// deterministic-test-harness shape — resolves it turn by turn, and
// prints the resulting battle log.
type runCmd struct {
	Case string `arg:"" help:"Test case file name, relative to BATTLER_TEST_CASE_DIR."`
	Seed int64  `help:"Override the test case's PRNG seed." default:"0"`
}

type testCaseMon struct {
	Name    string   `json:"name"`
	Types   []string `json:"types"`
	Level   int      `json:"level"`
	Stats   [5]int   `json:"stats"`
	HP      int      `json:"hp"`
	MoveIDs []string `json:"move_ids"`
}

type testCasePlayer struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Team []testCaseMon `json:"team"`
}

type testCaseChoice struct {
	Mon      int    `json:"mon"`
	Kind     string `json:"kind"`
	MoveID   string `json:"move_id,omitempty"`
	Target   int    `json:"target,omitempty"`
	SwitchTo int    `json:"switch_to,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
}

type testCase struct {
	Seed    int64              `json:"seed"`
	Players []testCasePlayer   `json:"players"`
	Turns   [][]testCaseChoice `json:"turns"`
}

func (c *runCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	raw, err := os.ReadFile(filepath.Join(cfg.TestCaseDir, c.Case))
	if err != nil {
		return fmt.Errorf("reading test case: %w", err)
	}
	var tc testCase
	if err := json.Unmarshal(raw, &tc); err != nil {
		return fmt.Errorf("parsing test case: %w", err)
	}
	if len(tc.Players) < 2 {
		return fmt.Errorf("test case must define at least two players")
	}

	engineCfg := cfg.BattleConfig()
	if tc.Seed != 0 {
		engineCfg.Seed = tc.Seed
	}
	if c.Seed != 0 {
		engineCfg.Seed = c.Seed
	}

	b := battle.NewBattle(engineCfg)
	if err := loadCatalog(context.Background(), cfg.DataDir, b); err != nil {
		return fmt.Errorf("loading data catalog: %w", err)
	}

	sideOf := make(map[string]battle.SideRef, len(tc.Players))
	for _, pr := range tc.Players {
		playerRef := b.AddPlayer(pr.ID, pr.Name)
		sideRef := b.AddSide(playerRef)
		side := b.Side(sideRef)
		for _, tm := range pr.Team {
			mon := &battle.Mon{
				Side:      sideRef,
				Name:      tm.Name,
				Types:     tm.Types,
				Level:     tm.Level,
				HP:        tm.HP,
				MaxHP:     tm.HP,
				Position:  -1,
				Volatiles: make(map[string]battle.EffectRef),
			}
			for i := 0; i < len(mon.Stats) && i < len(tm.Stats); i++ {
				mon.Stats[i] = tm.Stats[i]
			}
			for _, id := range tm.MoveIDs {
				moveID := battle.EffectID{Kind: battle.KindMove, ID: battle.NormalizeIdentifier(id)}
				mon.Moves = append(mon.Moves, battle.MonMove{Move: moveID, PP: battle.DefaultMovePP, MaxPP: battle.DefaultMovePP})
			}
			ref := b.AddMon(sideRef, mon)
			side.Mons = append(side.Mons, ref)
		}
		if len(side.Mons) > 0 {
			side.Active = []battle.MonRef{side.Mons[0]}
			b.Mon(side.Mons[0]).Position = 0
		}
		sideOf[pr.ID] = sideRef
	}

	for _, turn := range tc.Turns {
		choices := make([]battle.Choice, 0, len(turn))
		for _, tcc := range turn {
			kind, err := choiceKindFromWire(tcc.Kind)
			if err != nil {
				return err
			}
			choices = append(choices, battle.Choice{
				Mon:      battle.MonRef(tcc.Mon),
				Kind:     kind,
				MoveID:   tcc.MoveID,
				Target:   tcc.Target,
				SwitchTo: battle.MonRef(tcc.SwitchTo),
				ItemID:   tcc.ItemID,
			})
		}
		b.RunTurn(choices)
	}

	for _, line := range b.Log.Lines() {
		fmt.Println(line)
	}
	return nil
}

func choiceKindFromWire(kind string) (battle.ChoiceKind, error) {
	switch kind {
	case "move":
		return battle.ChoiceMove, nil
	case "switch":
		return battle.ChoiceSwitch, nil
	case "item":
		return battle.ChoiceItem, nil
	case "pass":
		return battle.ChoicePass, nil
	case "escape":
		return battle.ChoiceEscape, nil
	case "forfeit":
		return battle.ChoiceForfeit, nil
	default:
		return 0, fmt.Errorf("unknown choice kind %q", kind)
	}
}

func loadCatalog(ctx context.Context, dataDir string, b *battle.Battle) error {
	return server.ExecuteWithFileSystemCircuitBreaker(ctx, func(ctx context.Context) error {
		cat, err := battle.LoadCatalogFromDataDir(ctx, dataDir)
		if err != nil {
			return err
		}
		b.Catalog.Merge(cat)
		return nil
	})
}
