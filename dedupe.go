package main

// DeduplicateApplications collapses records that refer to the same job
// application, keyed by exact (Company, Job Title). At most one record per
// key survives; losers are dropped, not archived. Survivor order follows
// the first appearance of each key in the input, so the function is
// deterministic and idempotent.
func DeduplicateApplications(apps []Application) []Application {
	if len(apps) < 2 {
		return apps
	}

	type indexed struct {
		index int
		app   Application
	}

	var order []identityKey
	groups := make(map[identityKey][]indexed, len(apps))
	for i, app := range apps {
		k := app.key()
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], indexed{index: i, app: app})
	}

	out := make([]Application, 0, len(order))
	for _, k := range order {
		group := groups[k]
		winner := group[0]
		for _, candidate := range group[1:] {
			if outranks(candidate.app, winner.app) {
				winner = candidate
			}
		}
		out = append(out, winner.app)
	}
	return out
}

// outranks reports whether a should survive over b. The composite key is
// status rank (Declined highest), then completeness (fewer Unknown fields),
// then observed date (a real date beats no date, later beats earlier).
// Equal keys keep the incumbent, so the first-encountered record wins.
func outranks(a, b Application) bool {
	if ar, br := a.Status.Rank(), b.Status.Rank(); ar != br {
		return ar > br
	}
	if au, bu := unknownFieldCount(a), unknownFieldCount(b); au != bu {
		return au < bu
	}
	// Missing or malformed dates parse as the zero time and lose against
	// any real date.
	ad, _ := observedDate(a)
	bd, _ := observedDate(b)
	return ad.After(bd)
}
