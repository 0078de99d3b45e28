package domain

import (
	"math"
	"time"
)

// Source identifies a sentiment indicator feed.
type Source string

const (
	SourceCNNFearGreed Source = "cnn_fear_greed"
	SourceNAAIM        Source = "naaim"
)

// Sources lists all supported feeds in display order.
var Sources = []Source{SourceCNNFearGreed, SourceNAAIM}

func (s Source) IsValid() bool {
	return s == SourceCNNFearGreed || s == SourceNAAIM
}

// DisplayName returns the human-readable indicator name.
func (s Source) DisplayName() string {
	switch s {
	case SourceCNNFearGreed:
		return "CNN Fear & Greed Index"
	case SourceNAAIM:
		return "NAAIM Exposure Index"
	default:
		return string(s)
	}
}

// Component is one sub-indicator (or trailing-history entry) of a reading.
type Component struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Rating string  `json:"rating,omitempty"`
}

// Reading is one sentiment observation. A new reading replaces the prior
// one on each refresh cycle; readings are never mutated after construction.
type Reading struct {
	Source     Source      `json:"source"`
	Score      float64     `json:"score"`
	Label      string      `json:"label"`
	Components []Component `json:"components,omitempty"`
	History    []Component `json:"history,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	IsDemo     bool        `json:"is_demo"`
}

// Band is one segment of a sentiment gauge. Bands are lower-closed and
// upper-open; the final band of each source includes 100.
type Band struct {
	Label string  `json:"label"`
	Color string  `json:"color"`
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
}

var cnnBands = []Band{
	{Label: "Extreme Fear", Color: "#c0392b", Lo: 0, Hi: 25},
	{Label: "Fear", Color: "#e67e22", Lo: 25, Hi: 45},
	{Label: "Neutral", Color: "#f1c40f", Lo: 45, Hi: 55},
	{Label: "Greed", Color: "#2ecc71", Lo: 55, Hi: 75},
	{Label: "Extreme Greed", Color: "#27ae60", Lo: 75, Hi: 100},
}

var naaimBands = []Band{
	{Label: "Extreme Bearish", Color: "#c0392b", Lo: 0, Hi: 40},
	{Label: "Bearish", Color: "#e67e22", Lo: 40, Hi: 60},
	{Label: "Neutral", Color: "#f1c40f", Lo: 60, Hi: 80},
	{Label: "Bullish", Color: "#2ecc71", Lo: 80, Hi: 95},
	{Label: "Extreme Bullish", Color: "#27ae60", Lo: 95, Hi: 100},
}

// Bands returns the gauge bands for a source in ascending order.
func Bands(source Source) []Band {
	if source == SourceNAAIM {
		return naaimBands
	}
	return cnnBands
}

// BandFor maps a score to exactly one band of the source's gauge.
// Scores outside [0,100] are clamped first.
func BandFor(source Source, score float64) Band {
	bands := Bands(source)
	score = ClampScore(score)
	for _, b := range bands[:len(bands)-1] {
		if score < b.Hi {
			return b
		}
	}
	return bands[len(bands)-1]
}

// ClampScore bounds a score to the [0,100] gauge scale. NaN and infinities
// collapse to 0 so a bad upstream value can never break the invariant.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
