package updates

// OptionalRow is one line of the optional-software table. Managed tracks
// the user's desired state; OriginalManaged is what the self-serve
// manifest said when the table was built, so apply-time diffs can tell an
// add from a removal.
type OptionalRow struct {
	ItemName        string
	Name            string
	Version         string
	Size            string
	Description     string
	Status          string
	Enabled         bool
	Installed       bool
	Managed         bool
	OriginalManaged bool
}

// BuildOptionalRows derives the optional-software table from the items and
// the names currently chosen in the self-serve manifest.
func BuildOptionalRows(items []Item, selfServeInstalls []string) []OptionalRow {
	chosen := make(map[string]bool, len(selfServeInstalls))
	for _, name := range selfServeInstalls {
		chosen[name] = true
	}

	rows := make([]OptionalRow, 0, len(items))
	for _, it := range items {
		row := OptionalRow{
			ItemName:        it.Name,
			Name:            it.Label(),
			Version:         TrimVersion(it.VersionToInstall),
			Size:            sizeText(it),
			Description:     it.Description,
			Enabled:         true,
			Installed:       it.Installed,
			Managed:         chosen[it.Name],
			OriginalManaged: chosen[it.Name],
		}
		row.Status = optionalStatus(it, &row)
		rows = append(rows, row)
	}
	return rows
}

func optionalStatus(it Item, row *OptionalRow) string {
	if it.Installed {
		switch {
		case it.NeedsUpdate:
			return "Update available"
		case it.WillBeRemoved:
			return "Will be removed"
		case !it.Uninstallable:
			row.Enabled = false
			return "Not removable"
		default:
			row.Size = "-"
			return "Installed"
		}
	}

	switch {
	case it.WillBeInstalled:
		return "Will be installed"
	case it.LicensedSeatsAvailable != nil && !*it.LicensedSeatsAvailable:
		row.Enabled = false
		return "No available license seats"
	case it.Note != "":
		// The worker noted a reason this item cannot install right now.
		row.Enabled = false
		return it.Note
	default:
		return "Not installed"
	}
}

// OptionalChoices diffs the table against its original state: names newly
// selected go to managed_installs, names deselected that were managed go
// to managed_uninstalls.
func OptionalChoices(rows []OptionalRow) (installs, uninstalls []string) {
	for _, row := range rows {
		if row.Managed {
			installs = append(installs, row.ItemName)
		} else if row.OriginalManaged {
			uninstalls = append(uninstalls, row.ItemName)
		}
	}
	return installs, uninstalls
}
