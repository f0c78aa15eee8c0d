package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionState_Transitions(t *testing.T) {
	allowed := map[SessionState][]SessionState{
		SessionStateScheduled:  {SessionStateInProgress, SessionStateCancelled},
		SessionStateInProgress: {SessionStateAnalyzing, SessionStateCompleted, SessionStateCancelled},
		SessionStateAnalyzing:  {SessionStateCompleted, SessionStateCancelled},
	}
	all := []SessionState{SessionStateScheduled, SessionStateInProgress, SessionStateAnalyzing, SessionStateCompleted, SessionStateCancelled}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			require.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	require.True(t, SessionStateCompleted.IsTerminal())
	require.True(t, SessionStateInProgress.AcceptsResponses())
	require.False(t, SessionStateAnalyzing.AcceptsResponses())
}

func TestTemplateState_NeverReturnsToDraft(t *testing.T) {
	require.True(t, TemplateStateDraft.CanTransitionTo(TemplateStateActive))
	require.True(t, TemplateStateDraft.CanTransitionTo(TemplateStateDraft))
	require.True(t, TemplateStateClosed.CanTransitionTo(TemplateStateActive))
	require.False(t, TemplateStateActive.CanTransitionTo(TemplateStateDraft))
	require.False(t, TemplateStateArchived.CanTransitionTo(TemplateStateDraft))
	require.False(t, TemplateStateActive.CanTransitionTo("BOGUS"))
}

func TestAccessLevel_Order(t *testing.T) {
	require.True(t, AccessAdmin.Satisfies(AccessEdit))
	require.True(t, AccessEdit.Satisfies(AccessUse))
	require.True(t, AccessClone.Satisfies(AccessUse))
	require.False(t, AccessClone.Satisfies(AccessEdit))
	require.False(t, AccessUse.Satisfies(AccessAdmin))
	require.False(t, AccessLevel("OWNER").Satisfies(AccessUse))
}

func TestTemplateQuestion_AppliesTo(t *testing.T) {
	open := TemplateQuestion{}
	require.True(t, open.AppliesTo(PerspectivePeer))

	restricted := TemplateQuestion{Perspectives: []Perspective{PerspectiveSelf, PerspectiveManager}}
	require.True(t, restricted.AppliesTo(PerspectiveManager))
	require.False(t, restricted.AppliesTo(PerspectivePeer))
}

func TestQuestion_OptionValuesPrefersOptionSet(t *testing.T) {
	q := Question{
		Options:   []Option{{Value: "inline"}},
		OptionSet: &OptionSet{Options: []Option{{Value: "a"}, {Value: "b"}}},
	}
	require.Equal(t, []string{"a", "b"}, q.OptionValues())

	q.OptionSet = nil
	require.Equal(t, []string{"inline"}, q.OptionValues())
}
