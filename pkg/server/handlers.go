package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"goldbox-rpg/pkg/battle"
)

// teamMonRequest is the wire shape of one Mon in a battle-creation
// request's team list. Species/stat derivation is the external static
// data loader's concern (spec.md §1); the control surface only accepts
// the already-resolved numbers a loader would have produced.
type teamMonRequest struct {
	Name    string   `json:"name"`
	Types   []string `json:"types"`
	Level   int      `json:"level"`
	Stats   [5]int   `json:"stats"` // atk, def, spa, spd, spe
	HP      int      `json:"hp"`
	MoveIDs []string `json:"move_ids"`
}

type playerRequest struct {
	ID   string           `json:"id"`
	Name string           `json:"name"`
	Team []teamMonRequest `json:"team"`
}

type createBattleRequest struct {
	Players []playerRequest `json:"players"`
}

type createBattleResponse struct {
	BattleID string `json:"battle_id"`
}

// handleCreateBattle builds a fresh Battle from the submitted rosters,
// registering one Side per player, and returns the battle id the caller
// uses for subsequent choice submissions and log streaming.
func (s *Server) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBattleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Players) < 2 {
		http.Error(w, "a battle requires at least two players", http.StatusBadRequest)
		return
	}

	b := battle.NewBattle(s.config.BattleConfig())
	if err := s.loadCatalog(r.Context(), b); err != nil {
		http.Error(w, fmt.Sprintf("failed to load data catalog: %v", err), http.StatusInternalServerError)
		return
	}

	bs := NewBattleSession(b)
	for _, pr := range req.Players {
		playerRef := b.AddPlayer(pr.ID, pr.Name)
		sideRef := b.AddSide(playerRef)
		side := b.Side(sideRef)
		for _, tm := range pr.Team {
			mon := buildMon(b, sideRef, tm)
			ref := b.AddMon(sideRef, mon)
			side.Mons = append(side.Mons, ref)
		}
		if len(side.Mons) > 0 {
			side.Active = []battle.MonRef{side.Mons[0]}
			if m := b.Mon(side.Mons[0]); m != nil {
				m.Position = 0
			}
		}
		bs.Players[pr.ID] = playerRef
	}

	s.mu.Lock()
	s.battles[bs.ID] = bs
	s.mu.Unlock()

	s.writeJSON(w, http.StatusCreated, createBattleResponse{BattleID: bs.ID})
}

// buildMon resolves tm's moves against the catalog and assembles a Mon
// ready to be placed on a side; Stats/HP/level arrive pre-computed per
// teamMonRequest's doc comment.
func buildMon(b *battle.Battle, side battle.SideRef, tm teamMonRequest) *battle.Mon {
	mon := &battle.Mon{
		Side:      side,
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
	return mon
}

// loadCatalog loads the configured data directory into b's catalog,
// guarded by the file-system circuit breaker the rest of this package
// already wires in for other file-system-backed operations.
func (s *Server) loadCatalog(ctx context.Context, b *battle.Battle) error {
	return ExecuteWithFileSystemCircuitBreaker(ctx, func(ctx context.Context) error {
		cat, err := battle.LoadCatalogFromDataDir(ctx, s.config.DataDir)
		if err != nil {
			return err
		}
		b.Catalog.Merge(cat)
		return nil
	})
}

// handleBattleRoutes dispatches /battles/{id}/choices, /battles/{id}/log,
// and /battles/{id}/ws to their respective handlers.
func (s *Server) handleBattleRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/battles/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	battleID, rest := parts[0], parts[1]

	switch rest {
	case "choices":
		s.handleSubmitChoice(w, r, battleID)
	case "log":
		s.handleGetLog(w, r, battleID)
	case "ws":
		playerID := r.URL.Query().Get("player_id")
		s.HandleBattleWebSocket(w, r, battleID, playerID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

type choiceRequest struct {
	PlayerID string          `json:"player_id"`
	Choice   wsChoiceMessage `json:"choice"`
}

// handleSubmitChoice validates and, once every player has submitted,
// resolves one turn (spec.md §6/§7's battle request interface).
func (s *Server) handleSubmitChoice(w http.ResponseWriter, r *http.Request, battleID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	bs, ok := s.getBattle(battleID)
	if !ok {
		http.Error(w, "no such battle", http.StatusNotFound)
		return
	}

	var req choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	choice, err := choiceFromWire(req.Choice)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := bs.SubmitChoice(req.PlayerID, choice); err != nil {
		if detail, ok := err.(*battle.ErrInvalidChoiceDetail); ok {
			s.writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"player_id": detail.PlayerID,
				"reason":    detail.Reason,
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleGetLog returns every battle-log line recorded so far.
func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request, battleID string) {
	bs, ok := s.getBattle(battleID)
	if !ok {
		http.Error(w, "no such battle", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"lines": bs.Battle.Log.Lines()})
}

func (s *Server) getBattle(battleID string) (*BattleSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bs, ok := s.battles[battleID]
	return bs, ok
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// choiceFromWire translates a wsChoiceMessage into a battle.Choice,
// rejecting unrecognized kind strings (spec.md §7's structured-error
// requirement starts at the wire boundary, before ValidateChoice ever
// sees it).
func choiceFromWire(msg wsChoiceMessage) (battle.Choice, error) {
	var kind battle.ChoiceKind
	switch msg.Kind {
	case "move":
		kind = battle.ChoiceMove
	case "switch":
		kind = battle.ChoiceSwitch
	case "item":
		kind = battle.ChoiceItem
	case "pass":
		kind = battle.ChoicePass
	case "escape":
		kind = battle.ChoiceEscape
	case "forfeit":
		kind = battle.ChoiceForfeit
	default:
		return battle.Choice{}, fmt.Errorf("unknown choice kind %q", msg.Kind)
	}
	return battle.Choice{
		Mon:      battle.MonRef(msg.Mon),
		Kind:     kind,
		MoveID:   msg.MoveID,
		Target:   msg.Target,
		SwitchTo: battle.MonRef(msg.SwitchTo),
		ItemID:   msg.ItemID,
	}, nil
}
