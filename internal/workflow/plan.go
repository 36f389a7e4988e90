package workflow

import (
	"context"
	"strings"

	"slidevox/internal/language"
	"slidevox/internal/matching"
	"slidevox/internal/pptx"
	"slidevox/internal/services"
	"slidevox/internal/slots"
)

// Plan analyses a deck without modifying anything. The deck is opened before
// the locale directory is listed, so an unreadable deck is always a storage
// or package failure. A missing locale directory is reported as
// services.ErrNotFound with the plan's locale fields populated.
func (r *Runner) Plan(ctx context.Context, deckPath, localeOverride string) (*Plan, error) {
	loc, err := r.resolveLocale(deckPath, localeOverride)
	if err != nil {
		return nil, err
	}
	plan := &Plan{
		Source:   deckPath,
		Locale:   loc,
		AssetDir: r.cfg.LocaleAssetDir(loc.Code),
	}

	pkg, err := pptx.Open(deckPath, false)
	if err != nil {
		return plan, err
	}
	defer pkg.Close()

	items, err := slots.Extract(pkg)
	if err != nil {
		return plan, err
	}

	if err := ctx.Err(); err != nil {
		return plan, err
	}

	assetPaths, err := r.source.List(plan.AssetDir, r.cfg.Matching.AssetGlob)
	if err != nil {
		return plan, err
	}
	plan.Assets = assetPaths
	plan.Slots = items
	plan.Matches = matching.Match(items, assetPaths, r.cfg.Matching.TieBreak)
	return plan, nil
}

func (r *Runner) resolveLocale(deckPath, override string) (language.Locale, error) {
	override = strings.TrimSpace(override)
	if override == "" {
		return language.ResolveLocale(deckPath)
	}
	if !language.IsLocaleRun(override) {
		return language.Locale{}, services.Wrap(
			services.ErrUnresolvableLocale,
			deckPath,
			"resolve locale",
			"Locale override "+override+" is not a locale code",
			nil,
		)
	}
	return language.Locale{Code: override, Tag: language.Canonical(override)}, nil
}
