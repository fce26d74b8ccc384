package growth

// MilestoneEvaluation describes where a member count sits relative to the
// configured milestone increment. It is derived per event, never stored.
type MilestoneEvaluation struct {
	MemberCount int
	Remainder   int
	IsMilestone bool
	NextTarget  int
}

// EvaluateMilestone computes the milestone position of memberCount for the
// given increment. On an exact multiple the next target is one full
// increment away; otherwise it is the nearest multiple above the count.
func EvaluateMilestone(memberCount, increment int) MilestoneEvaluation {
	remainder := memberCount % increment
	eval := MilestoneEvaluation{
		MemberCount: memberCount,
		Remainder:   remainder,
	}
	if remainder == 0 {
		eval.IsMilestone = true
		eval.NextTarget = memberCount + increment
	} else {
		eval.NextTarget = memberCount + (increment - remainder)
	}
	return eval
}
