package provider

import (
	"time"

	"market-mood/internal/domain"
)

// demoScore is the fixed mid-range value shown when a live fetch fails.
// The exact number is an implementation-defined placeholder, not a
// contract; it only has to sit visibly in the neutral band.
const demoScore = 50.0

// DemoProvider supplies static placeholder readings so the dashboard never
// renders empty. It is synchronous and cannot fail.
type DemoProvider struct{}

func NewDemoProvider() *DemoProvider {
	return &DemoProvider{}
}

// Reading returns a demo reading for the given source, stamped with the
// current time and IsDemo=true.
func (p *DemoProvider) Reading(source domain.Source) *domain.Reading {
	now := time.Now().UTC()

	switch source {
	case domain.SourceNAAIM:
		return &domain.Reading{
			Source: source,
			Score:  demoScore,
			Label:  domain.BandFor(source, demoScore).Label,
			Components: []domain.Component{
				{Name: "exposure", Value: demoScore},
			},
			Timestamp: now,
			IsDemo:    true,
		}
	default:
		components := make([]domain.Component, 0, len(cnnComponentKeys))
		for _, key := range cnnComponentKeys {
			components = append(components, domain.Component{
				Name:   key,
				Value:  demoScore,
				Rating: "neutral",
			})
		}
		return &domain.Reading{
			Source:     domain.SourceCNNFearGreed,
			Score:      demoScore,
			Label:      domain.BandFor(domain.SourceCNNFearGreed, demoScore).Label,
			Components: components,
			History: []domain.Component{
				{Name: "previous_close", Value: demoScore},
				{Name: "previous_1_week", Value: demoScore},
				{Name: "previous_1_month", Value: demoScore},
				{Name: "previous_1_year", Value: demoScore},
			},
			Timestamp: now,
			IsDemo:    true,
		}
	}
}
