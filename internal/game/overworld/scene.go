package overworld

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

//go:embed maps/*.yaml
var mapsFS embed.FS

// ErrBattleActive is returned by StartBattle while a battle is already running.
var ErrBattleActive = errors.New("overworld: battle already active")

// Point is a tile coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Spawn places one enemy on the map.
type Spawn struct {
	Type string `yaml:"type"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// MapFile is the YAML form of a map.
type MapFile struct {
	Name    string   `yaml:"name"`
	Tiles   []string `yaml:"tiles"`
	Player  Point    `yaml:"player"`
	Enemies []Spawn  `yaml:"enemies"`
}

// ParseMapFile decodes a YAML map.
func ParseMapFile(data []byte) (*MapFile, error) {
	var mf MapFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("overworld: parsing map: %w", err)
	}
	return &mf, nil
}

// Scene owns the map, the player position and the map enemies, and acts as
// the battle's reinforcement source.
type Scene struct {
	Map     *TileMap
	PlayerX int
	PlayerY int

	enemies      []*Enemy
	tables       *content.Tables
	src          dice.Source
	logger       *zap.Logger
	battleActive bool
}

// NewScene builds a scene from mf.
//
// Precondition: tables and src must be non-nil.
// Postcondition: Returns an error if the player or any enemy stands on an
// unwalkable tile, or an enemy type is not in tables.
func NewScene(mf *MapFile, tables *content.Tables, src dice.Source, step time.Duration, logger *zap.Logger) (*Scene, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tm, err := ParseTileMap(mf.Tiles)
	if err != nil {
		return nil, err
	}
	var errs []string
	if !tm.IsWalkable(mf.Player.X, mf.Player.Y) {
		errs = append(errs, fmt.Sprintf("player start (%d,%d) is not walkable", mf.Player.X, mf.Player.Y))
	}
	s := &Scene{
		Map:     tm,
		PlayerX: mf.Player.X,
		PlayerY: mf.Player.Y,
		tables:  tables,
		src:     src,
		logger:  logger,
	}
	for i, sp := range mf.Enemies {
		if _, ok := tables.Enemy(sp.Type); !ok {
			errs = append(errs, fmt.Sprintf("enemy %d: unknown type %q", i, sp.Type))
			continue
		}
		if !tm.IsWalkable(sp.X, sp.Y) {
			errs = append(errs, fmt.Sprintf("enemy %d: (%d,%d) is not walkable", i, sp.X, sp.Y))
			continue
		}
		s.enemies = append(s.enemies, NewEnemy(fmt.Sprintf("enemy_%d", i), sp.Type, sp.X, sp.Y, step))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("overworld: invalid map %q: %s", mf.Name, strings.Join(errs, "; "))
	}
	return s, nil
}

// LoadScene reads a YAML map from path.
func LoadScene(path string, tables *content.Tables, src dice.Source, step time.Duration, logger *zap.Logger) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("overworld: reading map %q: %w", path, err)
	}
	mf, err := ParseMapFile(data)
	if err != nil {
		return nil, err
	}
	return NewScene(mf, tables, src, step, logger)
}

// DefaultScene builds the embedded default map.
func DefaultScene(tables *content.Tables, src dice.Source, step time.Duration, logger *zap.Logger) (*Scene, error) {
	data, err := mapsFS.ReadFile("maps/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("overworld: reading embedded map: %w", err)
	}
	mf, err := ParseMapFile(data)
	if err != nil {
		return nil, err
	}
	return NewScene(mf, tables, src, step, logger)
}

// Enemies implements combat.Overworld.
func (s *Scene) Enemies() []combat.OverworldEnemy {
	out := make([]combat.OverworldEnemy, len(s.enemies))
	for i, e := range s.enemies {
		out[i] = e
	}
	return out
}

// MapEnemies returns the concrete map enemies in spawn order.
func (s *Scene) MapEnemies() []*Enemy {
	out := make([]*Enemy, len(s.enemies))
	copy(out, s.enemies)
	return out
}

// Enemy returns the map enemy with the given ID.
func (s *Scene) Enemy(id string) (*Enemy, bool) {
	for _, e := range s.enemies {
		if e.id == id {
			return e, true
		}
	}
	return nil, false
}

// Walkability implements combat.Overworld.
func (s *Scene) Walkability() combat.Walkability { return s.Map }

// BattleActive reports whether a battle started by StartBattle is still running.
func (s *Scene) BattleActive() bool { return s.battleActive }

// NearestEnemy returns the closest living, unengaged enemy to the player.
// Ties go to the earliest spawn. Returns nil if there is none.
func (s *Scene) NearestEnemy() *Enemy {
	var best *Enemy
	bestDist := 0
	for _, e := range s.enemies {
		if !e.alive || e.Engaged() {
			continue
		}
		d := e.DistanceTo(s.PlayerX, s.PlayerY)
		if best == nil || d < bestDist {
			best, bestDist = e, d
		}
	}
	return best
}

// StartBattle engages trigger and returns the battle setup: trigger's squad
// attacks from the front.
//
// Precondition: trigger belongs to this scene and is alive and unengaged.
func (s *Scene) StartBattle(trigger *Enemy) (combat.Setup, error) {
	if s.battleActive {
		return combat.Setup{}, ErrBattleActive
	}
	if trigger == nil || !trigger.alive || trigger.Engaged() {
		return combat.Setup{}, fmt.Errorf("overworld: enemy cannot start a battle")
	}
	f := s.tables.RandomFormation(trigger.Type, s.src)
	if f == nil {
		return combat.Setup{}, fmt.Errorf("overworld: no formation for %q", trigger.Type)
	}
	trigger.EnterBattle()
	s.battleActive = true
	s.logger.Info("battle triggered",
		zap.String("enemy", trigger.id),
		zap.String("type", trigger.Type),
		zap.String("formation", f.ID),
	)
	return combat.Setup{
		Squads: []combat.Arrival{{
			Direction:      combat.DirFront,
			Formation:      f,
			SourceEnemyIDs: []string{trigger.id},
		}},
		PlayerX: s.PlayerX,
		PlayerY: s.PlayerY,
	}, nil
}

// ReadyReinforcements implements combat.Overworld. Every enemy that has reached
// the battle becomes its own arrival group with a random formation for its
// type, and is marked as in battle so it is reported only once.
func (s *Scene) ReadyReinforcements(playerX, playerY int) []combat.Arrival {
	var out []combat.Arrival
	for _, e := range s.enemies {
		if !e.alive || !e.readyToJoin || e.state == StateInBattle {
			continue
		}
		f := s.tables.RandomFormation(e.Type, s.src)
		dir := e.ArrivalDirection(playerX, playerY)
		e.EnterBattle()
		if f == nil {
			s.logger.Warn("no formation for arriving enemy", zap.String("enemy", e.id), zap.String("type", e.Type))
			continue
		}
		out = append(out, combat.Arrival{
			Direction:      dir,
			Formation:      f,
			SourceEnemyIDs: []string{e.id},
		})
	}
	return out
}

// EndBattle hands the battle result back to the map. After a victory the
// defeated enemies die; every other engaged enemy returns to patrol.
func (s *Scene) EndBattle(defeatedIDs []string, victory bool) {
	if victory {
		for _, id := range defeatedIDs {
			if e, ok := s.Enemy(id); ok {
				e.Die()
			}
		}
	}
	for _, e := range s.enemies {
		if e.alive && e.Engaged() {
			e.ReturnToPatrol()
		}
	}
	s.battleActive = false
	s.logger.Info("battle ended",
		zap.Bool("victory", victory),
		zap.Strings("defeated", defeatedIDs),
		zap.Int("remaining", s.Remaining()),
	)
}

// Remaining counts living enemies on the map.
func (s *Scene) Remaining() int {
	n := 0
	for _, e := range s.enemies {
		if e.alive {
			n++
		}
	}
	return n
}
