package models

import "time"

// Watchlist is a user-curated group of tickers
type Watchlist struct {
	Name        string    `json:"name" badgerhold:"key"`
	Description string    `json:"description"`
	Tickers     []string  `json:"tickers"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Contains reports whether ticker is already on the list
func (w *Watchlist) Contains(ticker string) bool {
	for _, t := range w.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// Add appends ticker if not already present, returning true on change
func (w *Watchlist) Add(ticker string) bool {
	if w.Contains(ticker) {
		return false
	}
	w.Tickers = append(w.Tickers, ticker)
	w.UpdatedAt = time.Now().UTC()
	return true
}

// Remove deletes ticker from the list, returning true on change
func (w *Watchlist) Remove(ticker string) bool {
	for i, t := range w.Tickers {
		if t == ticker {
			w.Tickers = append(w.Tickers[:i], w.Tickers[i+1:]...)
			w.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}
