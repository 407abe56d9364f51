package core

import (
	"github.com/inovacc/orgclone/internal/giturl"
	"github.com/inovacc/orgclone/internal/layout"
)

// PlannedClone describes what Run would do for one URL
type PlannedClone struct {
	URL          string
	Organization string
	Folder       string
	Skip         bool
	Reason       string
}

// Plan resolves every URL to its destination folder without touching the
// filesystem or the transport.
func Plan(urls []string, root string) []PlannedClone {
	plan := make([]PlannedClone, 0, len(urls))

	for _, rawURL := range urls {
		org, ok := giturl.ResolveOrganization(rawURL)
		if !ok {
			plan = append(plan, PlannedClone{URL: rawURL, Skip: true, Reason: ReasonNoOrganization})

			continue
		}

		plan = append(plan, PlannedClone{
			URL:          rawURL,
			Organization: org,
			Folder:       layout.OrganizationFolder(root, org),
		})
	}

	return plan
}
