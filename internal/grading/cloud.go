package grading

// CloudClass is one of the ten cloud genera used for classification.
type CloudClass struct {
	Name  string `json:"name"`
	Latin string `json:"latin"`
}

// Classes lists the cloud genera in the order the vision prompt presents them.
var Classes = []CloudClass{
	{Name: "권운", Latin: "Cirrus"},
	{Name: "권적운", Latin: "Cirrocumulus"},
	{Name: "권층운", Latin: "Cirrostratus"},
	{Name: "고적운", Latin: "Altocumulus"},
	{Name: "고층운", Latin: "Altostratus"},
	{Name: "층운", Latin: "Stratus"},
	{Name: "층적운", Latin: "Stratocumulus"},
	{Name: "적운", Latin: "Cumulus"},
	{Name: "적란운", Latin: "Cumulonimbus"},
	{Name: "난층운", Latin: "Nimbostratus"},
}

// ClassNames returns the Korean labels of every known class.
func ClassNames() []string {
	names := make([]string, 0, len(Classes))
	for _, class := range Classes {
		names = append(names, class.Name)
	}
	return names
}

// IsKnownClass reports whether name exactly equals one of the canonical labels.
func IsKnownClass(name string) bool {
	for _, class := range Classes {
		if class.Name == name {
			return true
		}
	}
	return false
}
