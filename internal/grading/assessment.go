package grading

// Provenance tags where a judgment came from.
type Provenance string

const (
	// ProvenanceAuthoritative marks a judgment produced by the vision provider.
	ProvenanceAuthoritative Provenance = "authoritative"
	// ProvenanceSynthetic marks a locally generated demo judgment.
	ProvenanceSynthetic Provenance = "synthetic"
)

// Assessment is a judgment together with its provenance. Construct it with
// Authoritative or Synthetic so the tag is never left empty.
type Assessment struct {
	Judgment   Judgment   `json:"judgment"`
	Provenance Provenance `json:"provenance"`
}

// Authoritative wraps a judgment returned by the vision provider.
func Authoritative(judgment Judgment) Assessment {
	return Assessment{Judgment: judgment, Provenance: ProvenanceAuthoritative}
}

// Synthetic wraps a locally generated stand-in judgment.
func Synthetic(judgment Judgment) Assessment {
	return Assessment{Judgment: judgment, Provenance: ProvenanceSynthetic}
}

// IsAuthoritative reports whether the judgment came from the vision provider.
func (a Assessment) IsAuthoritative() bool {
	return a.Provenance == ProvenanceAuthoritative
}

// Unverified wraps a judgment echoed back by a client. Nothing ties it to a
// provider call, so it is tagged synthetic and any claimed score is dropped.
func Unverified(judgment Judgment) Assessment {
	judgment.Score = nil
	judgment.ScoreBreakdown = nil
	return Synthetic(judgment)
}
