package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBank builds a full 50-question bank. Every question has four options
// with correctIndex 2; doors listed in traps are trap doors.
func testBank(traps ...int) []Question {
	trapSet := make(map[int]bool, len(traps))
	for _, t := range traps {
		trapSet[t] = true
	}
	bank := make([]Question, DoorCount)
	for i := range bank {
		bank[i] = Question{
			ID:           i,
			Prompt:       "prompt",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 2,
			IsTrap:       trapSet[i],
		}
	}
	return bank
}

func answerDoor(t *testing.T, s *Session, globalIndex, selected int, bank []Question) bool {
	t.Helper()
	return s.Answer(RoomOf(globalIndex), DoorInRoomOf(globalIndex), globalIndex, selected, bank)
}

func startedSession() *Session {
	s := NewSession()
	s.SetTeamName("forgers")
	s.Start(time.Now())
	return s
}

func TestAnswerScoring(t *testing.T) {
	bank := testBank(1)

	t.Run("correct answer scores plus five", func(t *testing.T) {
		s := startedSession()
		assert.True(t, answerDoor(t, s, 0, 2, bank))
		assert.Equal(t, 5, s.Score)
		require.Len(t, s.Answers, 1)
		assert.Equal(t, 5, s.Answers[0].ScoreDelta)
		assert.True(t, s.Answers[0].Correct)
		assert.Equal(t, DoorKindNormal, s.Answers[0].DoorKind)
	})

	t.Run("wrong answer on normal door scores zero", func(t *testing.T) {
		s := startedSession()
		assert.True(t, answerDoor(t, s, 0, 0, bank))
		assert.Equal(t, 0, s.Score)
		require.Len(t, s.Answers, 1)
		assert.Equal(t, 0, s.Answers[0].ScoreDelta)
		assert.False(t, s.Answers[0].Correct)
	})

	t.Run("wrong answer on trap door scores minus five", func(t *testing.T) {
		s := startedSession()
		assert.True(t, answerDoor(t, s, 1, 3, bank))
		assert.Equal(t, -5, s.Score)
		require.Len(t, s.Answers, 1)
		assert.Equal(t, -5, s.Answers[0].ScoreDelta)
		assert.Equal(t, DoorKindTrap, s.Answers[0].DoorKind)
	})

	t.Run("correct answer on trap door still scores plus five", func(t *testing.T) {
		s := startedSession()
		assert.True(t, answerDoor(t, s, 1, 2, bank))
		assert.Equal(t, 5, s.Score)
	})
}

func TestAnswerGuards(t *testing.T) {
	bank := testBank()

	t.Run("empty bank is a no-op", func(t *testing.T) {
		s := startedSession()
		assert.False(t, s.Answer(1, 1, 0, 2, nil))
		assert.Empty(t, s.Answers)
	})

	t.Run("duplicate door is a no-op", func(t *testing.T) {
		s := startedSession()
		assert.True(t, answerDoor(t, s, 0, 2, bank))
		assert.False(t, answerDoor(t, s, 0, 0, bank))
		require.Len(t, s.Answers, 1)
		assert.Equal(t, 2, s.Answers[0].SelectedIndex, "first answer wins")
		assert.Equal(t, 5, s.Score, "second call must not touch the score")
	})

	t.Run("missing question is a no-op", func(t *testing.T) {
		s := startedSession()
		short := bank[:3]
		assert.False(t, s.Answer(1, 4, 3, 0, short))
		assert.Empty(t, s.Answers)
	})

	t.Run("room door mismatch is a no-op", func(t *testing.T) {
		s := startedSession()
		// Global index 7 belongs to room 2 door 3.
		assert.False(t, s.Answer(1, 3, 7, 2, bank))
		assert.False(t, s.Answer(2, 2, 7, 2, bank))
		assert.Empty(t, s.Answers)
		assert.True(t, s.Answer(2, 3, 7, 2, bank))
	})

	t.Run("out of range selection is a no-op", func(t *testing.T) {
		s := startedSession()
		assert.False(t, s.Answer(1, 1, 0, 4, bank))
		assert.False(t, s.Answer(1, 1, 0, -1, bank))
		assert.Empty(t, s.Answers)
	})
}

func TestAnswerSnapshotsQuestion(t *testing.T) {
	bank := testBank()
	s := startedSession()
	require.True(t, answerDoor(t, s, 0, 2, bank))

	// Mutating the bank after answering must not change the log.
	bank[0].Options[0] = "tampered"
	assert.Equal(t, "a", s.Answers[0].Options[0])
}

func TestRoomGatedUnlock(t *testing.T) {
	bank := testBank()
	s := startedSession()
	assert.Equal(t, 1, s.MaxRoomUnlocked)

	// Four of five doors leave the next room locked.
	for g := 0; g < 4; g++ {
		require.True(t, answerDoor(t, s, g, 2, bank))
	}
	assert.Equal(t, 1, s.MaxRoomUnlocked)

	require.True(t, answerDoor(t, s, 4, 2, bank))
	assert.Equal(t, 2, s.MaxRoomUnlocked)
}

func TestUnlockIsMonotonic(t *testing.T) {
	bank := testBank()
	s := startedSession()

	// Clear room 2 first, then room 1; the unlock level never moves down.
	for g := 5; g < 10; g++ {
		require.True(t, answerDoor(t, s, g, 2, bank))
	}
	assert.Equal(t, 3, s.MaxRoomUnlocked)
	for g := 0; g < 5; g++ {
		require.True(t, answerDoor(t, s, g, 2, bank))
		assert.GreaterOrEqual(t, s.MaxRoomUnlocked, 3)
	}
	assert.Equal(t, 3, s.MaxRoomUnlocked)
}

func TestUnlockCapsAtLastRoom(t *testing.T) {
	bank := testBank()
	s := startedSession()
	for g := 0; g < DoorCount; g++ {
		require.True(t, answerDoor(t, s, g, 2, bank))
	}
	assert.Equal(t, RoomCount, s.MaxRoomUnlocked)
	assert.True(t, s.Complete())
	assert.Len(t, s.AnsweredDoorIDs, DoorCount)
}

func TestScoreConservation(t *testing.T) {
	bank := testBank(1, 7, 13, 29, 42)
	s := startedSession()
	for g := 0; g < DoorCount; g++ {
		selected := g % 4 // mix of right and wrong answers
		require.True(t, answerDoor(t, s, g, selected, bank))
		sum := 0
		for _, a := range s.Answers {
			sum += a.ScoreDelta
		}
		assert.Equal(t, sum, s.Score)
	}
}

func TestFinishIsOneShot(t *testing.T) {
	s := startedSession()
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Finish(first)
	require.NotNil(t, s.EndTime)
	assert.Equal(t, first, *s.EndTime)

	s.Finish(first.Add(time.Hour))
	assert.Equal(t, first, *s.EndTime, "second finish keeps the original timestamp")
}

func TestResetVersusRestart(t *testing.T) {
	bank := testBank()
	s := startedSession()
	require.True(t, answerDoor(t, s, 0, 2, bank))

	s.Start(time.Now())
	assert.Equal(t, "forgers", s.TeamName, "restart preserves the team name")
	assert.Zero(t, s.Score)
	assert.Empty(t, s.Answers)
	assert.Empty(t, s.AnsweredDoorIDs)
	assert.Nil(t, s.EndTime)
	assert.Equal(t, 1, s.MaxRoomUnlocked)
	assert.NotNil(t, s.StartTime)

	s.Reset()
	assert.Empty(t, s.TeamName, "reset clears the team name too")
	assert.Nil(t, s.StartTime)
	assert.Zero(t, s.MaxRoomUnlocked)
	assert.NotNil(t, s.Answers)
	assert.NotNil(t, s.AnsweredDoorIDs)
}

func TestFullPlaythroughExport(t *testing.T) {
	bank := testBank(3)
	s := startedSession()
	for g := 0; g < DoorCount; g++ {
		require.True(t, answerDoor(t, s, g, 2, bank))
	}
	require.True(t, s.Complete())
	s.Finish(time.Now())

	export := s.Export()
	assert.Equal(t, GameName, export.GameName)
	assert.Equal(t, Tagline, export.Tagline)
	assert.Equal(t, "forgers", export.TeamName)
	assert.Len(t, export.Answers, DoorCount)
	assert.Equal(t, s.Score, export.TotalScore)
	assert.NotNil(t, export.StartTime)
	assert.NotNil(t, export.EndTime)
}

func TestExportJSONShape(t *testing.T) {
	s := NewSession()
	s.SetTeamName("forgers")

	data, err := json.Marshal(s.Export())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"gameName", "tagline", "teamName", "startTime", "endTime", "totalScore", "answers"} {
		assert.Contains(t, doc, key)
	}
	assert.Nil(t, doc["startTime"], "unstarted session exports a null start time")
	assert.NotNil(t, doc["answers"], "answers export as an array even when empty")
}

func TestNormalizeRepairsCorruptBlob(t *testing.T) {
	raw := []byte(`{
		"teamName": "forgers",
		"score": 999,
		"answers": [
			{"room":1,"door":1,"doorGlobalIndex":0,"deltaScore":5,"correct":true},
			{"room":1,"door":1,"doorGlobalIndex":0,"deltaScore":5,"correct":true},
			{"room":1,"door":2,"doorGlobalIndex":1,"deltaScore":-5,"correct":false}
		],
		"answeredDoorIds": [0, 0, 1, 9],
		"maxRoomUnlocked": 99
	}`)

	var s Session
	require.NoError(t, json.Unmarshal(raw, &s))
	s.Normalize()

	assert.Len(t, s.Answers, 2, "duplicate log entries collapse to the first")
	assert.Equal(t, []int{0, 1}, s.AnsweredDoorIDs)
	assert.Equal(t, 0, s.Score, "score is recomputed from the log")
	assert.Equal(t, RoomCount, s.MaxRoomUnlocked)
}
