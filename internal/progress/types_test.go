package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyClampsHearts(t *testing.T) {
	tests := []struct {
		name       string
		hearts     int
		points     int
		m          Mutation
		wantHearts int
		wantPoints int
	}{
		{"miss", 5, 0, Mutation{HeartsDelta: -1}, 4, 0},
		{"miss at zero", 0, 30, Mutation{HeartsDelta: -1}, 0, 30},
		{"practice at cap", 5, 10, Mutation{HeartsDelta: 1, PointsDelta: PointsPerChallenge}, 5, 20},
		{"practice refill", 3, 10, Mutation{HeartsDelta: 1, PointsDelta: PointsPerChallenge}, 4, 20},
		{"negative points ignored", 2, 10, Mutation{PointsDelta: -10}, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := UserProgress{Hearts: tt.hearts, Points: tt.points}
			got := p.Apply(tt.m)
			assert.Equal(t, tt.wantHearts, got.Hearts)
			assert.Equal(t, tt.wantPoints, got.Points)
			assert.Equal(t, tt.hearts, p.Hearts, "Apply must not modify the receiver")
		})
	}
}

func TestNew(t *testing.T) {
	p := New("u1", 3)
	assert.Equal(t, DefaultHearts, p.Hearts)
	assert.Equal(t, 0, p.Points)
	assert.Equal(t, int64(3), p.ActiveCourseID)
	assert.Equal(t, DefaultUserName, p.UserName)
	assert.Equal(t, int64(0), p.Version)
}

func TestSubscriptionIsActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{"nil", nil, false},
		{"no price", &Subscription{StripeCurrentPeriodEnd: now.Add(48 * time.Hour)}, false},
		{"current", &Subscription{StripePriceID: "price_1", StripeCurrentPeriodEnd: now.Add(time.Hour)}, true},
		{"in grace day", &Subscription{StripePriceID: "price_1", StripeCurrentPeriodEnd: now.Add(-23 * time.Hour)}, true},
		{"expired", &Subscription{StripePriceID: "price_1", StripeCurrentPeriodEnd: now.Add(-25 * time.Hour)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.IsActive(now))
		})
	}
}
