package tracks

// Override returns a new selection where an audio or subtitle decision is
// kept exactly when its position is in keep. Video decisions stay kept and
// positions outside the selection are ignored. The receiver is not modified.
func (s Selection) Override(keep []int) Selection {
	chosen := make(map[int]struct{}, len(keep))
	for _, pos := range keep {
		if pos >= 0 && pos < len(s) {
			chosen[pos] = struct{}{}
		}
	}
	out := make(Selection, len(s))
	for pos, d := range s {
		out[pos] = d
		if d.Type == StreamVideo {
			continue
		}
		_, want := chosen[pos]
		if want == d.Keep {
			continue
		}
		out[pos].Keep = want
		if want {
			out[pos].Reason = ReasonUserKept
		} else {
			out[pos].Reason = ReasonUserRemoved
		}
	}
	return out
}

// Clone returns an independent copy of the selection.
func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	copy(out, s)
	return out
}

// Reviewable returns the positions of decisions the user may change.
func (s Selection) Reviewable() []int {
	positions := make([]int, 0, len(s))
	for pos, d := range s {
		if d.Type == StreamAudio || d.Type == StreamSubtitle {
			positions = append(positions, pos)
		}
	}
	return positions
}
