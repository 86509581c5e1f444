package domain

// Window is the calendar's visible hour range, derived from a session list.
// Both bounds are hours-of-day in [0,23].
type Window struct {
	StartHour int `json:"startDayHour"`
	EndHour   int `json:"endDayHour"`
}

// DefaultWindow is the full-day window used when no sessions exist. Deriving
// min/max over an empty list would be undefined, so the empty case always
// yields this value.
var DefaultWindow = Window{StartHour: 0, EndHour: 23}

// DeriveWindow computes the visible window from the sessions' start and end
// hours, each read in its timestamp's own location. The result depends only
// on the set of hour values, not on input order.
func DeriveWindow(sessions []Session) Window {
	if len(sessions) == 0 {
		return DefaultWindow
	}

	w := Window{StartHour: sessions[0].StartDate.Hour(), EndHour: sessions[0].EndDate.Hour()}
	for _, s := range sessions[1:] {
		if h := s.StartDate.Hour(); h < w.StartHour {
			w.StartHour = h
		}
		if h := s.EndDate.Hour(); h > w.EndHour {
			w.EndHour = h
		}
	}
	return w
}
