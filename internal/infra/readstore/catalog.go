package readstore

import (
	"context"
	"encoding/json"

	"campbook/internal/domain/deposit"
	"campbook/internal/domain/money"
	"campbook/internal/domain/pricing"
	"campbook/internal/domain/quote"
	"campbook/internal/domain/site"
	"campbook/internal/domain/upsell"
	"campbook/internal/infra"
	"campbook/internal/infra/converter"
	"campbook/internal/infra/db"
	"campbook/internal/pkg/errs"
	"campbook/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ReadOnlyUoW interface {
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error
	WithDB(ctx context.Context, fn func(ctx context.Context, conn db.DBTX) error) error
}

// CatalogReadStore is the PostgreSQL CatalogReader. A snapshot is read in
// one read-only transaction so rules and prices come from the same state.
type CatalogReadStore struct {
	uow ReadOnlyUoW
}

func NewCatalogReadStore(uow ReadOnlyUoW) *CatalogReadStore {
	return &CatalogReadStore{uow: uow}
}

func (s *CatalogReadStore) Snapshot(ctx context.Context, siteID uuid.UUID) (quote.Snapshot, error) {
	var snap quote.Snapshot
	err := s.uow.WithinReadOnly(ctx, func(ctx context.Context, tx db.DBTX) error {
		var (
			campgroundID, classID uuid.UUID
			siteName, className   string
			active                bool
			baseRate              int64
			maxOccupancy          int32
			amenities             []string
			depositRaw            []byte
		)
		err := tx.QueryRow(ctx, `
			SELECT s.campground_id, s.class_id, s.name, s.active,
			       c.name, c.base_rate, c.max_occupancy, c.amenities, cg.deposit
			FROM sites s
			JOIN site_classes c ON c.id = s.class_id
			JOIN campgrounds cg ON cg.id = s.campground_id
			WHERE s.id = $1`, siteID,
		).Scan(&campgroundID, &classID, &siteName, &active,
			&className, &baseRate, &maxOccupancy, &amenities, &depositRaw)
		if err != nil {
			if pgconv.IsNoRows(err) {
				return errs.Mark(infra.WrapRepoErr("site not found", err), errs.ErrSiteNotFound)
			}
			return infra.WrapRepoErr("failed to load site", err)
		}

		class, err := site.NewClass(classID, campgroundID, className, money.Cents(baseRate), int(maxOccupancy), amenities)
		if err != nil {
			return corrupted(err, "site class %s", classID)
		}
		snap.Class = class
		snap.Site = site.ReconstructSite(siteID, campgroundID, classID, siteName, active)

		if snap.Deposit, err = depositPolicy(depositRaw); err != nil {
			return corrupted(err, "deposit policy of campground %s", campgroundID)
		}
		if snap.Rules, err = loadRules(ctx, tx, campgroundID); err != nil {
			return err
		}
		snap.Upsells, err = loadUpsells(ctx, tx, campgroundID)
		return err
	})
	if err != nil {
		return quote.Snapshot{}, err
	}
	return snap, nil
}

func (s *CatalogReadStore) ClassSiteIDs(ctx context.Context, classID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.uow.WithDB(ctx, func(ctx context.Context, conn db.DBTX) error {
		rows, err := conn.Query(ctx, `SELECT id FROM sites WHERE class_id = $1 AND active ORDER BY id`, classID)
		if err != nil {
			return infra.WrapRepoErr("failed to list class sites", err)
		}
		ids, err = pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return infra.WrapRepoErr("failed to scan class sites", err)
		}
		return nil
	})
	return ids, err
}

func depositPolicy(raw []byte) (*deposit.Policy, error) {
	if len(raw) == 0 {
		return deposit.DefaultPolicy(), nil
	}
	var doc converter.DepositDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return converter.PolicyFromDoc(&doc)
}

func loadRules(ctx context.Context, tx db.DBTX, campgroundID uuid.UUID) (*pricing.RuleSet, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, site_class_id, name, predicate, mode, priority,
		       adjustment_kind, adjustment_amount, adjustment_percent_bps, min_rate, max_rate
		FROM pricing_rules WHERE campground_id = $1`, campgroundID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load pricing rules", err)
	}
	defer rows.Close()

	var rules []*pricing.Rule
	for rows.Next() {
		var (
			doc          converter.RuleDoc
			classID      pgtype.UUID
			predicateRaw []byte
			amount, pct  int64
			minRate      pgtype.Int8
			maxRate      pgtype.Int8
		)
		if err := rows.Scan(&doc.ID, &classID, &doc.Name, &predicateRaw, &doc.Mode, &doc.Priority,
			&doc.Adjustment.Kind, &amount, &pct, &minRate, &maxRate); err != nil {
			return nil, infra.WrapRepoErr("failed to scan pricing rule", err)
		}
		if classID.Valid {
			id := pgconv.UUIDFromPgtype(classID)
			doc.SiteClassID = &id
		}
		if err := json.Unmarshal(predicateRaw, &doc.Predicate); err != nil {
			return nil, corrupted(err, "predicate of rule %s", doc.ID)
		}
		doc.Adjustment.Amount = money.Cents(amount)
		doc.Adjustment.PercentBps = money.Bps(pct)
		doc.MinRate = centsPtr(minRate)
		doc.MaxRate = centsPtr(maxRate)

		rule, err := converter.RuleFromDoc(campgroundID, doc)
		if err != nil {
			return nil, corrupted(err, "rule %s", doc.ID)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to load pricing rules", err)
	}

	rs, err := pricing.NewRuleSet(campgroundID, rules)
	if err != nil {
		return nil, corrupted(err, "rule set of campground %s", campgroundID)
	}
	return rs, nil
}

func loadUpsells(ctx context.Context, tx db.DBTX, campgroundID uuid.UUID) (*upsell.Catalog, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, name, pricing, unit_price, inventory_tracked, stock
		FROM upsell_items WHERE campground_id = $1`, campgroundID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load upsell items", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (converter.ItemDoc, error) {
		var d converter.ItemDoc
		var price int64
		err := row.Scan(&d.ID, &d.Name, &d.Pricing, &price, &d.InventoryTracked, &d.Stock)
		d.UnitPrice = money.Cents(price)
		return d, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan upsell items", err)
	}

	rows, err = tx.Query(ctx, `
		SELECT id, name, item_ids, amount_off, percent_off_bps
		FROM upsell_bundles WHERE campground_id = $1`, campgroundID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load upsell bundles", err)
	}
	bundles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (converter.BundleDoc, error) {
		var d converter.BundleDoc
		var amountOff, percentOff pgtype.Int8
		err := row.Scan(&d.ID, &d.Name, &d.ItemIDs, &amountOff, &percentOff)
		d.AmountOff = centsPtr(amountOff)
		if percentOff.Valid {
			p := money.Bps(percentOff.Int64)
			d.PercentOffBps = &p
		}
		return d, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan upsell bundles", err)
	}

	its := make([]*upsell.Item, 0, len(items))
	for _, d := range items {
		it, err := converter.ItemFromDoc(d)
		if err != nil {
			return nil, corrupted(err, "upsell item %s", d.ID)
		}
		its = append(its, it)
	}
	bs := make([]*upsell.Bundle, 0, len(bundles))
	for _, d := range bundles {
		b, err := converter.BundleFromDoc(d)
		if err != nil {
			return nil, corrupted(err, "upsell bundle %s", d.ID)
		}
		bs = append(bs, b)
	}
	// Bundle pricing was checked when the catalog was written; a stale
	// bundle surfaces as a quote warning instead of failing the read.
	c, err := upsell.ReconstructCatalog(its, bs)
	if err != nil {
		return nil, corrupted(err, "upsell catalog of campground %s", campgroundID)
	}
	return c, nil
}

func centsPtr(v pgtype.Int8) *money.Cents {
	if !v.Valid {
		return nil
	}
	c := money.Cents(v.Int64)
	return &c
}

func corrupted(err error, format string, args ...any) error {
	return errs.Mark(errs.Wrapf(err, format, args...), errs.ErrCatalogCorrupted)
}
