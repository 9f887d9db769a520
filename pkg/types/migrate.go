package types

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// CurrentProjectVersion is the current version of the project document.
// Increment this value when adding new fields that require default values.
const CurrentProjectVersion = 3

// NewID returns a new random entity ID.
func NewID() string {
	return uuid.NewString()
}

// MigrateProject migrates the project to the current version.
// It returns the migrated project, a boolean indicating if changes were made, and an error if migration failed.
func MigrateProject(p ProjectConfig, currentVersion int) (ProjectConfig, bool, error) {
	if currentVersion >= CurrentProjectVersion {
		return p, false, nil
	}

	// copy the collections we touch so the caller's slices stay untouched
	p.Loads = slices.Clone(p.Loads)
	p.Batteries = slices.Clone(p.Batteries)
	p.SolarPanels = slices.Clone(p.SolarPanels)
	p.WindGenerators = slices.Clone(p.WindGenerators)
	p.OtherSources = slices.Clone(p.OtherSources)

	migrated := false
	// Loop through versions to apply migrations sequentially
	for version := currentVersion + 1; version <= CurrentProjectVersion; version++ {
		switch version {
		case 1:
			// version 1: batteries without a depth of discharge get the chemistry default
			for i := range p.Batteries {
				if p.Batteries[i].DepthOfDischarge != 0 {
					continue
				}
				if dod, ok := DefaultDepthOfDischarge[p.Batteries[i].Type]; ok {
					p.Batteries[i].DepthOfDischarge = dod
					migrated = true
				}
			}
		case 2:
			// version 2: every entity has an id
			for i := range p.Loads {
				if p.Loads[i].ID == "" {
					p.Loads[i].ID = NewID()
					migrated = true
				}
			}
			for i := range p.Batteries {
				if p.Batteries[i].ID == "" {
					p.Batteries[i].ID = NewID()
					migrated = true
				}
			}
			for i := range p.SolarPanels {
				if p.SolarPanels[i].ID == "" {
					p.SolarPanels[i].ID = NewID()
					migrated = true
				}
			}
			for i := range p.WindGenerators {
				if p.WindGenerators[i].ID == "" {
					p.WindGenerators[i].ID = NewID()
					migrated = true
				}
			}
			for i := range p.OtherSources {
				if p.OtherSources[i].ID == "" {
					p.OtherSources[i].ID = NewID()
					migrated = true
				}
			}
		case 3:
			// version 3: add quantity to panels and generators
			for i := range p.SolarPanels {
				if p.SolarPanels[i].Quantity == 0 {
					p.SolarPanels[i].Quantity = 1
					migrated = true
				}
			}
			for i := range p.WindGenerators {
				if p.WindGenerators[i].Quantity == 0 {
					p.WindGenerators[i].Quantity = 1
					migrated = true
				}
			}
		default:
			return p, false, fmt.Errorf("unknown project version: %d", version)
		}
	}
	if p.Version != CurrentProjectVersion {
		p.Version = CurrentProjectVersion
		migrated = true
	}

	return p, migrated, nil
}
