package pomodoro

import "fmt"

// CyclePosition returns the index of the current step in the sequence
// Work 1, Break 1, ..., Work N, Long Break, where N is cycles. It returns -1
// while idle.
func CyclePosition(completed int, phase Phase, cycles int) int {
	if cycles <= 0 || completed < 0 {
		return -1
	}
	last := cycles*2 - 1
	switch phase {
	case PhaseWork:
		return (completed % cycles) * 2
	case PhaseLongBreak:
		return last
	case PhaseBreak:
		if completed == 0 {
			return 1
		}
		if completed%cycles == 0 {
			return last
		}
		return ((completed-1)%cycles)*2 + 1
	}
	return -1
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
