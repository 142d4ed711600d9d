package repository

import (
	"context"

	"campbook/internal/infra"
	"campbook/internal/infra/converter"
	"campbook/internal/infra/db"
	"campbook/internal/pkg/pgconv"
)

type CatalogRepository struct {
	uow UnitOfWork
}

func NewCatalogRepository(uow UnitOfWork) *CatalogRepository {
	return &CatalogRepository{uow: uow}
}

// Seed upserts every campground of doc in one transaction. Rules, items and
// bundles of a seeded campground are replaced, not merged.
func (r *CatalogRepository) Seed(ctx context.Context, doc converter.CatalogDoc) error {
	return r.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		for _, cg := range doc.Campgrounds {
			if err := seedCampground(ctx, tx, cg); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedCampground(ctx context.Context, tx db.DBTX, cg converter.CampgroundDoc) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO campgrounds (id, name, deposit) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, deposit = EXCLUDED.deposit`,
		cg.ID, cg.Name, cg.Deposit)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert campground", err)
	}

	for _, c := range cg.Classes {
		amenities := c.Amenities
		if amenities == nil {
			amenities = []string{}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO site_classes (id, campground_id, name, base_rate, max_occupancy, amenities)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, base_rate = EXCLUDED.base_rate,
				max_occupancy = EXCLUDED.max_occupancy, amenities = EXCLUDED.amenities`,
			c.ID, cg.ID, c.Name, int64(c.BaseRate), c.MaxOccupancy, amenities)
		if err != nil {
			return infra.WrapRepoErr("failed to upsert site class", err)
		}
	}

	for _, s := range cg.Sites {
		_, err := tx.Exec(ctx, `
			INSERT INTO sites (id, campground_id, class_id, name, active) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET class_id = EXCLUDED.class_id, name = EXCLUDED.name, active = EXCLUDED.active`,
			s.ID, cg.ID, s.ClassID, s.Name, s.Active)
		if err != nil {
			return infra.WrapRepoErr("failed to upsert site", err)
		}
	}

	for _, stmt := range []string{
		`DELETE FROM pricing_rules WHERE campground_id = $1`,
		`DELETE FROM upsell_bundles WHERE campground_id = $1`,
		`DELETE FROM upsell_items WHERE campground_id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, cg.ID); err != nil {
			return infra.WrapRepoErr("failed to clear campground configuration", err)
		}
	}

	for _, rule := range cg.Rules {
		var classID any
		if rule.SiteClassID != nil {
			classID = pgconv.UUIDToPgtype(*rule.SiteClassID)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO pricing_rules (id, campground_id, site_class_id, name, predicate, mode, priority,
				adjustment_kind, adjustment_amount, adjustment_percent_bps, min_rate, max_rate)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			rule.ID, cg.ID, classID, rule.Name, rule.Predicate, rule.Mode, rule.Priority,
			rule.Adjustment.Kind, int64(rule.Adjustment.Amount), int64(rule.Adjustment.PercentBps),
			rule.MinRate, rule.MaxRate)
		if err != nil {
			return infra.WrapRepoErr("failed to insert pricing rule", err)
		}
	}

	for _, it := range cg.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO upsell_items (id, campground_id, name, pricing, unit_price, inventory_tracked, stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, cg.ID, it.Name, it.Pricing, int64(it.UnitPrice), it.InventoryTracked, it.Stock)
		if err != nil {
			return infra.WrapRepoErr("failed to insert upsell item", err)
		}
	}

	for _, b := range cg.Bundles {
		_, err := tx.Exec(ctx, `
			INSERT INTO upsell_bundles (id, campground_id, name, item_ids, amount_off, percent_off_bps)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			b.ID, cg.ID, b.Name, b.ItemIDs, b.AmountOff, b.PercentOffBps)
		if err != nil {
			return infra.WrapRepoErr("failed to insert upsell bundle", err)
		}
	}
	return nil
}
