package store

import (
	"context"
	"fmt"

	"github.com/felwinter/trails/internal/catalog"
	"github.com/felwinter/trails/internal/models"
)

// Seed replaces the catalog tables with the contents of c.
func (s *Store) Seed(ctx context.Context, c *catalog.Catalog) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"story", "enemies", "items"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, sc := range c.Scenes {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO story (scene, description, choice1, choice2, result1, result2, enemy, grants, ending)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sc.ID, sc.Description, sc.Choice1, sc.Choice2, sc.Next1, sc.Next2, sc.Enemy, sc.Grants, sc.Ending)
		if err != nil {
			return fmt.Errorf("seeding scene %q: %w", sc.ID, err)
		}
	}
	for _, e := range c.Enemies {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO enemies (name, health, attack_power) VALUES (?, ?, ?)`,
			e.Name, e.MaxHealth, e.AttackPower)
		if err != nil {
			return fmt.Errorf("seeding enemy %q: %w", e.Name, err)
		}
	}
	for _, it := range c.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (name, description, effect, attack_bonus) VALUES (?, ?, ?, ?)`,
			it.Name, it.Description, it.Effect, it.AttackBonus)
		if err != nil {
			return fmt.Errorf("seeding item %q: %w", it.Name, err)
		}
	}

	meta := map[string]string{"title": c.Title, "start": c.Start, "entry": c.Entry}
	for k, v := range meta {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v)
		if err != nil {
			return fmt.Errorf("seeding meta %q: %w", k, err)
		}
	}

	return tx.Commit()
}

// LoadCatalog rebuilds the catalog from the seeded tables. The result is
// validated like any other catalog, so a tampered database fails here.
func (s *Store) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	meta, err := s.meta(ctx)
	if err != nil {
		return nil, err
	}

	scenes, err := s.scenes(ctx)
	if err != nil {
		return nil, err
	}
	enemies, err := s.enemies(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.items(ctx)
	if err != nil {
		return nil, err
	}

	return catalog.New(meta["title"], meta["start"], meta["entry"], scenes, enemies, items)
}

func (s *Store) meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

func (s *Store) scenes(ctx context.Context) ([]models.Scene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT scene, description, choice1, choice2, result1, result2, enemy, grants, ending FROM story ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Scene
	for rows.Next() {
		var sc models.Scene
		if err := rows.Scan(&sc.ID, &sc.Description, &sc.Choice1, &sc.Choice2, &sc.Next1, &sc.Next2,
			&sc.Enemy, &sc.Grants, &sc.Ending); err != nil {
			return nil, fmt.Errorf("%w: story row: %v", catalog.ErrInvalidCatalog, err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) enemies(ctx context.Context) ([]models.EnemyTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, health, attack_power FROM enemies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EnemyTemplate
	for rows.Next() {
		var e models.EnemyTemplate
		if err := rows.Scan(&e.Name, &e.MaxHealth, &e.AttackPower); err != nil {
			return nil, fmt.Errorf("%w: enemy row: %v", catalog.ErrInvalidCatalog, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) items(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, description, effect, attack_bonus FROM items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Item
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.Name, &it.Description, &it.Effect, &it.AttackBonus); err != nil {
			return nil, fmt.Errorf("%w: item row: %v", catalog.ErrInvalidCatalog, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
