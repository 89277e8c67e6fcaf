package listings

import (
	"math"

	"estate-marketplace/internal/domain"

	"github.com/mmcloughlin/geohash"
)

const areaGeohashPrecision = 6

// Checklist is the fixed set of presence checks a listing is scored on.
type Checklist struct {
	BasicInfo   bool `json:"basic_info"`
	Images      bool `json:"images"`
	Coordinates bool `json:"coordinates"`
	Features    bool `json:"features"`
	Published   bool `json:"published"`
}

func (c Checklist) done() int {
	n := 0
	for _, ok := range []bool{c.BasicInfo, c.Images, c.Coordinates, c.Features, c.Published} {
		if ok {
			n++
		}
	}
	return n
}

// Check evaluates the checklist for l.
func Check(l *domain.Listing) Checklist {
	return Checklist{
		BasicInfo:   l.HasBasicInfo(),
		Images:      len(l.Images) > 0,
		Coordinates: l.Coordinates != nil,
		Features:    l.Features != nil,
		Published:   l.Status == domain.StatusPublished,
	}
}

// CompletionPercentage scores l from 0 to 100. A published listing is always 100.
func CompletionPercentage(l *domain.Listing) int {
	if l.Status == domain.StatusPublished {
		return 100
	}
	return int(math.Round(100 * float64(Check(l).done()) / 5))
}

// DerivedStep is the wizard step implied by field presence: one past the last
// consecutive completed step.
func DerivedStep(l *domain.Listing) int {
	c := Check(l)
	step := domain.StepBasicInfo
	for _, ok := range []bool{c.BasicInfo, c.Images, c.Coordinates, c.Features} {
		if !ok {
			break
		}
		step++
	}
	return step
}

// Recompute refreshes every derived field on l. current_step only moves forward.
func Recompute(l *domain.Listing) {
	l.CompletionPercentage = CompletionPercentage(l)
	if step := DerivedStep(l); step > l.CurrentStep {
		l.CurrentStep = step
	}
	if l.CurrentStep < domain.StepBasicInfo {
		l.CurrentStep = domain.StepBasicInfo
	}
	if l.CurrentStep > domain.StepReview {
		l.CurrentStep = domain.StepReview
	}
	l.AreaGeohash = ""
	if l.Coordinates != nil {
		l.AreaGeohash = geohash.EncodeWithPrecision(l.Coordinates.Latitude, l.Coordinates.Longitude, areaGeohashPrecision)
	}
}
