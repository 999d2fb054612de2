package sequencer

import "github.com/PabloCSScobar/musicxml-parser/model"

// SplitHands partitions events for two-hand display: staff 1 is the right
// hand, staff 2 the left. Any other staff lands in other untouched, the
// caller decides what a third staff means.
func SplitHands(events []model.NoteEvent) (right, left, other []model.NoteEvent) {
	for _, e := range events {
		switch e.Staff {
		case 1:
			right = append(right, e)
		case 2:
			left = append(left, e)
		default:
			other = append(other, e)
		}
	}
	return right, left, other
}
