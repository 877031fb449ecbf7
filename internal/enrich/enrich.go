// Package enrich implements the Context Enricher + Feature Fusion stage:
// it loads the pilot's context, the active rule pack, and the bid
// package concurrently via errgroup (mirroring the orchestrator-level
// fan-out pattern the teacher's gateway uses for upstream calls), then
// fuses them into one domain.FeatureBundle for the optimizer.
package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/thehillman215/vectorbid/internal/apierrors"
	"github.com/thehillman215/vectorbid/internal/domain"
	"github.com/thehillman215/vectorbid/internal/ingest"
	"github.com/thehillman215/vectorbid/internal/ruleengine"
)

// ContextLoader resolves the pilot's ContextSnapshot for a request;
// calling code owns whatever backs this (a profile store, a static
// config, etc.) — enrich only needs the result.
type ContextLoader interface {
	Load(ctx context.Context, pilotID, airline string) (domain.ContextSnapshot, error)
}

// Enricher fuses context, rule pack, and bid package loads.
type Enricher struct {
	contexts  ContextLoader
	rulePacks *ruleengine.Cache
	packages  *ingest.Service
}

// New builds an Enricher from its three backing loaders.
func New(contexts ContextLoader, rulePacks *ruleengine.Cache, packages *ingest.Service) *Enricher {
	return &Enricher{contexts: contexts, rulePacks: rulePacks, packages: packages}
}

// Enrich runs the three loads concurrently under ctx's deadline. A
// missing rule pack does not fail the request: the bundle is returned
// with Legacy=true and a warning, and the optimizer then applies only its
// fixed FAR117 baseline checks.
// A missing bid package is a hard failure — there is nothing to build a
// schedule from.
func (e *Enricher) Enrich(ctx context.Context, pref domain.PreferenceSchema, month, packageID string) (domain.FeatureBundle, error) {
	var (
		snapshot domain.ContextSnapshot
		rulePack *domain.RulePack
		pkg      *domain.BidPackage
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snapshot, err = e.contexts.Load(gctx, pref.PilotID, pref.Airline)
		return err
	})

	var rulePackErr error
	g.Go(func() error {
		rp, err := e.rulePacks.Get(pref.Airline, month, "latest")
		if err != nil {
			rulePackErr = err
			return nil // degrade to legacy mode, never abort the group
		}
		rulePack = rp
		return nil
	})

	g.Go(func() error {
		p, err := e.packages.Lookup(packageID)
		if err != nil {
			return err
		}
		pkg = p
		return nil
	})

	if err := g.Wait(); err != nil {
		if pe, ok := apierrors.As(err); ok {
			return domain.FeatureBundle{}, pe
		}
		return domain.FeatureBundle{}, apierrors.NewInternal("enrich.Enrich", "feature fusion failed", err)
	}

	bundle := domain.FeatureBundle{
		Context:    snapshot,
		Preference: pref,
		Package:    pkg,
	}
	if rulePack == nil {
		bundle.Legacy = true
		bundle.Warnings = append(bundle.Warnings, "rule pack unavailable, running in legacy mode: "+errString(rulePackErr))
	} else {
		bundle.RulePack = rulePack
	}
	return bundle, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
