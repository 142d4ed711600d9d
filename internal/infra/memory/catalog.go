package memory

import (
	"context"
	"slices"

	"campbook/internal/domain/deposit"
	"campbook/internal/domain/pricing"
	"campbook/internal/domain/quote"
	"campbook/internal/domain/site"
	"campbook/internal/domain/upsell"
	"campbook/internal/infra/converter"
	"campbook/internal/pkg/errs"

	"github.com/google/uuid"
)

type campground struct {
	rules   *pricing.RuleSet
	deposit *deposit.Policy
	upsells *upsell.Catalog
}

// Catalog is a read-only CatalogReader built once from fixtures.
type Catalog struct {
	campgrounds map[uuid.UUID]*campground
	classes     map[uuid.UUID]*site.Class
	sites       map[uuid.UUID]*site.Site
	classSites  map[uuid.UUID][]uuid.UUID
}

func LoadCatalogFile(path string) (*Catalog, error) {
	doc, err := converter.LoadCatalogDoc(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(doc)
}

func NewCatalog(doc converter.CatalogDoc) (*Catalog, error) {
	c := &Catalog{
		campgrounds: make(map[uuid.UUID]*campground, len(doc.Campgrounds)),
		classes:     make(map[uuid.UUID]*site.Class),
		sites:       make(map[uuid.UUID]*site.Site),
		classSites:  make(map[uuid.UUID][]uuid.UUID),
	}
	for _, cg := range doc.Campgrounds {
		if err := c.add(cg); err != nil {
			return nil, errs.Wrapf(err, "campground %s", cg.ID)
		}
	}
	return c, nil
}

func (c *Catalog) add(doc converter.CampgroundDoc) error {
	for _, cd := range doc.Classes {
		class, err := converter.ClassFromDoc(doc.ID, cd)
		if err != nil {
			return err
		}
		c.classes[class.ID()] = class
	}
	for _, sd := range doc.Sites {
		class, ok := c.classes[sd.ClassID]
		if !ok || class.CampgroundID() != doc.ID {
			return errs.Wrapf(site.ErrMissingClass, "site %s class %s", sd.ID, sd.ClassID)
		}
		s, err := converter.SiteFromDoc(class, sd)
		if err != nil {
			return err
		}
		c.sites[s.ID()] = s
		if s.IsActive() {
			c.classSites[class.ID()] = append(c.classSites[class.ID()], s.ID())
		}
	}

	rules := make([]*pricing.Rule, 0, len(doc.Rules))
	for _, rd := range doc.Rules {
		r, err := converter.RuleFromDoc(doc.ID, rd)
		if err != nil {
			return err
		}
		rules = append(rules, r)
	}
	rs, err := pricing.NewRuleSet(doc.ID, rules)
	if err != nil {
		return err
	}
	policy, err := converter.PolicyFromDoc(doc.Deposit)
	if err != nil {
		return err
	}
	upsells, err := converter.UpsellCatalogFromDocs(doc.Items, doc.Bundles)
	if err != nil {
		return err
	}

	c.campgrounds[doc.ID] = &campground{rules: rs, deposit: policy, upsells: upsells}
	return nil
}

func (c *Catalog) Snapshot(ctx context.Context, siteID uuid.UUID) (quote.Snapshot, error) {
	s, ok := c.sites[siteID]
	if !ok {
		return quote.Snapshot{}, errs.Wrapf(errs.ErrSiteNotFound, "site %s", siteID)
	}
	class := c.classes[s.ClassID()]
	cg := c.campgrounds[s.CampgroundID()]
	return quote.Snapshot{
		Site:    s,
		Class:   class,
		Rules:   cg.rules,
		Deposit: cg.deposit,
		Upsells: cg.upsells,
	}, nil
}

func (c *Catalog) ClassSiteIDs(ctx context.Context, classID uuid.UUID) ([]uuid.UUID, error) {
	return slices.Clone(c.classSites[classID]), nil
}
