package game

import "time"

// The transition methods below are the only way session state changes.
// None of them returns an error: per the game's rules every malformed or
// duplicate intent degrades to a no-op instead of raising (a double-click on
// an answered door is normal traffic, not a fault). Callers that need to
// know whether anything happened can check the returned bool where provided.

// SetTeamName replaces the team name. No other field changes.
func (s *Session) SetTeamName(name string) {
	s.TeamName = name
}

// Start (re)initializes active play: score, answer log and progress are
// cleared, startTime is stamped and room 1 unlocks. The team name survives.
// Calling Start on a running session restarts it; this is the explicit
// "begin" action, not an idempotent one.
func (s *Session) Start(now time.Time) {
	start := now
	s.Score = 0
	s.Answers = []AnswerRecord{}
	s.AnsweredDoorIDs = []int{}
	s.StartTime = &start
	s.EndTime = nil
	s.MaxRoomUnlocked = 1
}

// Answer validates and applies a door answer. It reports whether the answer
// was recorded; all guard failures are silent no-ops:
//
//   - the bank is empty (questions not loaded yet)
//   - the door was already answered this session
//   - no question exists at globalIndex
//   - room/door disagree with the layout owning globalIndex
//   - selectedIndex is not a valid option index
func (s *Session) Answer(room, door, globalIndex, selectedIndex int, bank []Question) bool {
	if len(bank) == 0 {
		return false
	}
	if s.IsDoorAnswered(globalIndex) {
		return false
	}
	if globalIndex < 0 || globalIndex >= len(bank) {
		return false
	}
	// The caller's room/door must match the layout derived from the global
	// index; the two must never disagree.
	if room != RoomOf(globalIndex) || door != DoorInRoomOf(globalIndex) {
		return false
	}

	q := bank[globalIndex]
	if selectedIndex < 0 || selectedIndex >= len(q.Options) {
		return false
	}

	correct := selectedIndex == q.CorrectIndex
	delta := 0
	kind := DoorKindNormal
	if q.IsTrap {
		kind = DoorKindTrap
	}
	switch {
	case correct:
		delta = ScoreCorrect
	case q.IsTrap:
		delta = ScoreTrapPenalty
	}

	options := make([]string, len(q.Options))
	copy(options, q.Options)

	s.Answers = append(s.Answers, AnswerRecord{
		Room:          room,
		Door:          door,
		GlobalIndex:   globalIndex,
		QuestionID:    q.ID,
		Prompt:        q.Prompt,
		Options:       options,
		CorrectIndex:  q.CorrectIndex,
		SelectedIndex: selectedIndex,
		Correct:       correct,
		DoorKind:      kind,
		ScoreDelta:    delta,
		AnsweredAt:    time.Now().UTC(),
	})
	s.AnsweredDoorIDs = append(s.AnsweredDoorIDs, globalIndex)
	s.Score += delta

	if s.roomCleared(room) {
		next := room + 1
		if next > RoomCount {
			next = RoomCount
		}
		if next > s.MaxRoomUnlocked {
			s.MaxRoomUnlocked = next
		}
	}
	return true
}

// roomCleared reports whether every door of the room is in the answered set.
func (s *Session) roomCleared(room int) bool {
	start, end := RoomDoorRange(room)
	if start == end {
		return false
	}
	cleared := 0
	for _, id := range s.AnsweredDoorIDs {
		if id >= start && id < end {
			cleared++
		}
	}
	return cleared == DoorsPerRoom
}

// Finish stamps the end time. One-shot: a session that already ended keeps
// its original timestamp.
func (s *Session) Finish(now time.Time) {
	if s.EndTime != nil {
		return
	}
	end := now
	s.EndTime = &end
}

// Reset returns the session to the fully empty default, team name included.
// Distinct from Start, which preserves the team for another playthrough.
func (s *Session) Reset() {
	*s = *NewSession()
}

// IsDoorAnswered reports whether the door was already answered this session.
func (s *Session) IsDoorAnswered(globalIndex int) bool {
	for _, id := range s.AnsweredDoorIDs {
		if id == globalIndex {
			return true
		}
	}
	return false
}

// Started reports whether active play has begun.
func (s *Session) Started() bool {
	return s.StartTime != nil
}

// Complete reports whether every door across all rooms has been answered.
func (s *Session) Complete() bool {
	return len(s.AnsweredDoorIDs) == DoorCount
}

// Export produces the downloadable results document. It is derived from
// session state alone and contains no engine internals.
func (s *Session) Export() Export {
	answers := make([]AnswerRecord, len(s.Answers))
	copy(answers, s.Answers)
	return Export{
		GameName:   GameName,
		Tagline:    Tagline,
		TeamName:   s.TeamName,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		TotalScore: s.Score,
		Answers:    answers,
	}
}

// Clone returns a deep copy safe to hand to readers while the original
// keeps mutating under its owner's lock.
func (s *Session) Clone() *Session {
	out := *s
	out.Answers = make([]AnswerRecord, len(s.Answers))
	copy(out.Answers, s.Answers)
	out.AnsweredDoorIDs = make([]int, len(s.AnsweredDoorIDs))
	copy(out.AnsweredDoorIDs, s.AnsweredDoorIDs)
	if s.StartTime != nil {
		start := *s.StartTime
		out.StartTime = &start
	}
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	return &out
}

// Normalize repairs a session deserialized from an untrusted blob so the
// aggregate invariants hold: nil slices become empty, duplicate answered
// ids are dropped (keeping their first record), the score is recomputed
// from the log and the unlock level is clamped to 0..RoomCount.
func (s *Session) Normalize() {
	if s.Answers == nil {
		s.Answers = []AnswerRecord{}
	}
	seen := make(map[int]bool, len(s.Answers))
	answers := s.Answers[:0]
	for _, a := range s.Answers {
		if seen[a.GlobalIndex] {
			continue
		}
		seen[a.GlobalIndex] = true
		answers = append(answers, a)
	}
	s.Answers = answers

	ids := make([]int, 0, len(s.Answers))
	score := 0
	for _, a := range s.Answers {
		ids = append(ids, a.GlobalIndex)
		score += a.ScoreDelta
	}
	s.AnsweredDoorIDs = ids
	s.Score = score

	if s.MaxRoomUnlocked < 0 {
		s.MaxRoomUnlocked = 0
	}
	if s.MaxRoomUnlocked > RoomCount {
		s.MaxRoomUnlocked = RoomCount
	}
}
