package growth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateMilestone(t *testing.T) {
	tests := []struct {
		name        string
		memberCount int
		increment   int
		want        MilestoneEvaluation
	}{
		{
			name:        "exact multiple is a milestone",
			memberCount: 200,
			increment:   100,
			want: MilestoneEvaluation{
				MemberCount: 200,
				Remainder:   0,
				IsMilestone: true,
				NextTarget:  300,
			},
		},
		{
			name:        "between milestones",
			memberCount: 237,
			increment:   100,
			want: MilestoneEvaluation{
				MemberCount: 237,
				Remainder:   37,
				IsMilestone: false,
				NextTarget:  300,
			},
		},
		{
			name:        "one short of a milestone",
			memberCount: 99,
			increment:   100,
			want: MilestoneEvaluation{
				MemberCount: 99,
				Remainder:   99,
				IsMilestone: false,
				NextTarget:  100,
			},
		},
		{
			name:        "small increment",
			memberCount: 10,
			increment:   10,
			want: MilestoneEvaluation{
				MemberCount: 10,
				Remainder:   0,
				IsMilestone: true,
				NextTarget:  20,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateMilestone(tt.memberCount, tt.increment)
			assert.Equal(t, tt.want, got)
		})
	}
}
