// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package tournament

import (
	"github.com/elliotchance/pie/v2"

	"github.com/AccelByte/extend-core-ranked/pkg/models"
)

// RemoteSnapshot is what one sync tick learned from the bracket provider.
// Matches is only populated for formats that need it.
type RemoteSnapshot struct {
	Tournament models.Tournament
	Matches    []models.RemoteMatch
}

// CompletionStrategy decides when a tournament of a given format is over.
type CompletionStrategy struct {
	format models.Format
}

func StrategyFor(format models.Format) CompletionStrategy {
	return CompletionStrategy{format: format}
}

func (s CompletionStrategy) Format() models.Format { return s.format }

// NeedsMatches reports whether IsComplete looks at the match list.
func (s CompletionStrategy) NeedsMatches() bool {
	return s.format == models.FormatRoundRobin
}

func (s CompletionStrategy) IsComplete(remote RemoteSnapshot) bool {
	switch s.format {
	case models.FormatDoubleElimination:
		// the grand final can leave the remote state open at full progress
		return remote.Tournament.IsTerminal() ||
			(remote.Tournament.ParticipantsCount > 1 && remote.Tournament.ProgressMeter == 100)
	case models.FormatRoundRobin:
		if len(remote.Matches) == 0 {
			return false
		}
		return pie.All(remote.Matches, func(m models.RemoteMatch) bool { return m.IsTerminal() })
	default:
		return remote.Tournament.IsTerminal()
	}
}
