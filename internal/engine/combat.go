package engine

import (
	"errors"

	"github.com/felwinter/trails/internal/models"
)

// BaseAttack is the damage a player deals with bare hands.
const BaseAttack = 10

// ErrBattleOver is returned when acting in a battle that has already ended.
var ErrBattleOver = errors.New("battle is over")

// BattleState is the state of an encounter.
type BattleState int

const (
	AwaitingAction BattleState = iota
	PlayerDefeated
	EnemyDefeated
	Fled
)

func (s BattleState) String() string {
	switch s {
	case AwaitingAction:
		return "awaiting action"
	case PlayerDefeated:
		return "player defeated"
	case EnemyDefeated:
		return "enemy defeated"
	case Fled:
		return "fled"
	default:
		return "unknown"
	}
}

// Battle is one encounter between the player and an enemy spawned for it.
type Battle struct {
	Scene models.Scene
	Enemy *models.Enemy
	State BattleState
}

// NewBattle spawns a fresh enemy from tmpl for the battle scene.
func NewBattle(scene models.Scene, tmpl models.EnemyTemplate) *Battle {
	return &Battle{
		Scene: scene,
		Enemy: tmpl.Spawn(),
		State: AwaitingAction,
	}
}

// Exchange reports what happened in one battle action.
type Exchange struct {
	Dealt   int  // damage the player dealt
	Taken   int  // damage the enemy dealt back
	Counter bool // whether the enemy counter-attacked
	State   BattleState
}

// Attack strikes the enemy for damage. A surviving enemy counter-attacks
// with its full attack power; a defeated one does not.
func (b *Battle) Attack(p *models.Player, damage int) (Exchange, error) {
	if b.State != AwaitingAction {
		return Exchange{State: b.State}, ErrBattleOver
	}

	b.Enemy.Health -= damage
	ex := Exchange{Dealt: damage}
	if b.Enemy.Health <= 0 {
		b.State = EnemyDefeated
		ex.State = b.State
		return ex, nil
	}

	p.Health -= b.Enemy.AttackPower
	ex.Taken = b.Enemy.AttackPower
	ex.Counter = true
	if p.Health <= 0 {
		b.State = PlayerDefeated
	}
	ex.State = b.State
	return ex, nil
}

// Flee ends the battle without any damage being exchanged.
func (b *Battle) Flee() (Exchange, error) {
	if b.State != AwaitingAction {
		return Exchange{State: b.State}, ErrBattleOver
	}
	b.State = Fled
	return Exchange{State: b.State}, nil
}

// AttackDamage is the damage a player deals: BaseAttack plus the attack
// bonus of every carried item the catalog knows.
func AttackDamage(p models.Player, items func(name string) (models.Item, error)) int {
	damage := BaseAttack
	for _, name := range p.Inventory.Items() {
		it, err := items(name)
		if err != nil {
			continue
		}
		damage += it.AttackBonus
	}
	return damage
}
