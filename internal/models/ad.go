package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Placement string

const (
	PlacementHeader  Placement = "header"
	PlacementSidebar Placement = "sidebar"
	PlacementInline  Placement = "inline"
	PlacementFooter  Placement = "footer"
)

// Placements lists valid ad slots.
var Placements = []string{string(PlacementHeader), string(PlacementSidebar), string(PlacementInline), string(PlacementFooter)}

// Ad is a banner served in a placement during a time window.
// Money fields are decimals stored as strings.
type Ad struct {
	ID          string          `bson:"_id" json:"id"`
	Title       string          `bson:"title" json:"title"`
	ImageURL    string          `bson:"imageUrl" json:"imageUrl"`
	TargetURL   string          `bson:"targetUrl" json:"targetUrl"`
	Placement   Placement       `bson:"placement" json:"placement"`
	Edition     Edition         `bson:"edition" json:"edition"`
	StartsAt    time.Time       `bson:"startsAt" json:"startsAt"`
	EndsAt      time.Time       `bson:"endsAt" json:"endsAt"`
	Active      bool            `bson:"active" json:"active"`
	Weight      int             `bson:"weight" json:"weight"`
	CPM         decimal.Decimal `bson:"cpm" json:"cpm"`
	Budget      decimal.Decimal `bson:"budget" json:"budget"`
	Spent       decimal.Decimal `bson:"spent" json:"spent"`
	Impressions int64           `bson:"impressions" json:"impressions"`
	Clicks      int64           `bson:"clicks" json:"clicks"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Servable reports whether the ad may be shown at now.
func (a *Ad) Servable(now time.Time) bool {
	if !a.Active || now.Before(a.StartsAt) || !now.Before(a.EndsAt) {
		return false
	}
	return a.Budget.IsZero() || a.Spent.LessThan(a.Budget)
}

// ImpressionCost is the cost of a single impression (cpm / 1000).
func (a *Ad) ImpressionCost() decimal.Decimal {
	return a.CPM.Div(decimal.NewFromInt(1000))
}
