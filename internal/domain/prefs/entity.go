package prefs

import (
	"time"

	"github.com/google/uuid"

	"plutus/internal/domain/trade"
)

// Preferences captures the last report view a user selected so the next
// session reopens where they left off. Stored in Redis with a long TTL,
// loss is harmless: the service falls back to defaults.
type Preferences struct {
	UserID uuid.UUID `json:"user_id"`

	ViewMode trade.ViewMode `json:"view_mode"`
	Year     int            `json:"year"`
	Month    time.Month     `json:"month"`

	Exchange    string `json:"exchange"`
	TradingPair string `json:"trading_pair"`
	Strategy    string `json:"strategy"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Default returns the preferences used when nothing is stored: current
// month, all dimensions unfiltered.
func Default(userID uuid.UUID, now time.Time) Preferences {
	p := trade.CurrentMonth(now)
	return Preferences{
		UserID:      userID,
		ViewMode:    p.Mode,
		Year:        p.Year,
		Month:       p.Month,
		Exchange:    trade.FilterAll,
		TradingPair: trade.FilterAll,
		Strategy:    trade.FilterAll,
		UpdatedAt:   now.UTC(),
	}
}

// Period converts the stored selection back into a reporting window.
func (p Preferences) Period() trade.Period {
	return trade.Period{Mode: p.ViewMode, Year: p.Year, Month: p.Month}
}

// Filter converts the stored selection into a record filter.
func (p Preferences) Filter() trade.Filter {
	return trade.Filter{
		Exchange:    p.Exchange,
		TradingPair: p.TradingPair,
		Strategy:    p.Strategy,
	}
}

// Validate checks the stored selection still describes a usable view.
func (p Preferences) Validate() error {
	return p.Period().Validate()
}
