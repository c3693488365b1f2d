package alerting

// Schema describes the threshold kinds and severities the generator understands.
type Schema struct {
	Kinds      []KindSchema `json:"kinds" yaml:"kinds"`
	Severities []Severity   `json:"severities" yaml:"severities"`
}

// KindSchema describes a threshold kind and the events generated for it.
type KindSchema struct {
	Name      string `json:"name" yaml:"name"`
	Label     string `json:"label" yaml:"label"`
	Parameter string `json:"parameter" yaml:"parameter"`
	OneShot   bool   `json:"oneShot" yaml:"oneShot"`

	// alarm type of the exceeded event
	ExceededAlarmType int `json:"exceededAlarmType" yaml:"exceededAlarmType"`

	// zero for one-shot kinds, which only get a rearmed event when the
	// rule declares a rearmed UEI
	RearmedAlarmType int `json:"rearmedAlarmType,omitempty" yaml:"rearmedAlarmType,omitempty"`
}

// GetSchema returns the catalog of supported threshold kinds.
func GetSchema() Schema {
	s := Schema{
		Kinds: make([]KindSchema, 0, len(Kinds)),
		Severities: []Severity{
			SeverityNormal, SeverityWarning, SeverityMinor, SeverityMajor, SeverityCritical,
		},
	}
	for _, k := range Kinds {
		ks := KindSchema{
			Name:              k.String(),
			Label:             k.DisplayName(),
			Parameter:         k.ParamToken(),
			OneShot:           k.IsOneShot(),
			ExceededAlarmType: k.AlarmType(Exceeded),
		}
		if !k.IsOneShot() {
			ks.RearmedAlarmType = k.AlarmType(Rearmed)
		}
		s.Kinds = append(s.Kinds, ks)
	}
	return s
}
