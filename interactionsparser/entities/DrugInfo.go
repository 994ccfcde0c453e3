package entities

// DrugInfoRecord holds the sections of a drug-information response.
// Every field is optional: a header the generator did not emit leaves
// the matching field empty. Pregnancy is only ever populated when the
// prompt asked for it, which happens only for pregnant profiles.
type DrugInfoRecord struct {
	Description      string `json:"description"`
	Uses             string `json:"uses"`
	Names            string `json:"names"`
	Dosage           string `json:"dosage"`
	PersonalizedDose string `json:"personalizedDose"`
	SideEffects      string `json:"sideEffects"`
	Pregnancy        string `json:"pregnancy,omitempty"`
}

// DrugInfoReport is the outcome of parsing one drug-information response.
type DrugInfoReport struct {
	Info      DrugInfoRecord `json:"info"`
	Malformed bool           `json:"malformed,omitempty"`
}
