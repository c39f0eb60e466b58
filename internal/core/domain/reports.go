package domain

// ClusterProfile is the human-readable summary of one k-means cluster,
// computed on the unstandardized rows assigned to it.
type ClusterProfile struct {
	Cluster        int     `json:"cluster"`
	Size           int     `json:"size"`
	MeanAge        float64 `json:"mean_age"`
	MeanWeight     float64 `json:"mean_weight"`
	MeanHeight     float64 `json:"mean_height"`
	MeanHemoglobin float64 `json:"mean_hemoglobin"`
	DominantGender string  `json:"dominant_gender"`
	DominantDonor  string  `json:"dominant_donation_history"`
}

// ClusteringReport orders profiles by descending mean hemoglobin; the first
// entry backs the ideal-profile narrative. Cluster indices are per-run
// artifacts and carry no identity across report windows.
type ClusteringReport struct {
	K            int              `json:"k"`
	Rows         int              `json:"rows"`
	Profiles     []ClusterProfile `json:"profiles"`
	IdealProfile string           `json:"ideal_profile"`
	Assignments  []int            `json:"assignments"`
	Points       []ClusterPoint   `json:"points"`
}

// ClusterPoint carries the scatter coordinates the dashboard plots
// (age vs hemoglobin, colored by cluster).
type ClusterPoint struct {
	Age        float64 `json:"age"`
	Hemoglobin float64 `json:"hemoglobin"`
	Weight     float64 `json:"weight"`
	Height     float64 `json:"height"`
	Gender     string  `json:"gender"`
	Cluster    int     `json:"cluster"`
}

type StatusCount struct {
	Status  EligibilityStatus `json:"status"`
	Count   int               `json:"count"`
	Percent float64           `json:"percent"`
}

type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

type GenderStatusShare struct {
	Gender  string            `json:"gender"`
	Status  EligibilityStatus `json:"status"`
	Count   int               `json:"count"`
	Percent float64           `json:"percent"`
}

type HealthReport struct {
	Total            int                 `json:"total"`
	StatusBreakdown  []StatusCount       `json:"status_breakdown"`
	PermanentReasons []ReasonCount       `json:"permanent_reasons"`
	TemporaryReasons []ReasonCount       `json:"temporary_reasons"`
	GenderImpact     []GenderStatusShare `json:"gender_impact"`
	Interpretation   string              `json:"interpretation"`
}

type MonthlyCount struct {
	Month     string `json:"month"`
	Total     int    `json:"total"`
	Eligibles int    `json:"eligibles"`
}

type AgeBinFidelity struct {
	AgeBin       string `json:"age_bin"`
	Returning    int    `json:"returning"`
	NonReturning int    `json:"non_returning"`
}

type RetentionReport struct {
	Monthly   []MonthlyCount   `json:"monthly"`
	ByGender  []ReasonCount    `json:"by_gender"`
	Fidelity  []AgeBinFidelity `json:"fidelity_by_age"`
	Total     int              `json:"total"`
	Men       int              `json:"men"`
	Women     int              `json:"women"`
	Eligibles int              `json:"eligibles"`
	Returning int              `json:"returning"`
	Summary   string           `json:"summary"`
}

type CampaignMonth struct {
	Month           string  `json:"month"`
	Candidates      int     `json:"candidates"`
	EligibilityRate float64 `json:"eligibility_rate"`
	ReturningShare  float64 `json:"returning_share"`
}

type CampaignReport struct {
	Months         []CampaignMonth `json:"months"`
	TopProfessions []ReasonCount   `json:"top_professions"`
	BestMonth      string          `json:"best_month"`
	Summary        string          `json:"summary"`
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positif"
	SentimentNegative SentimentLabel = "negatif"
	SentimentNeutral  SentimentLabel = "neutre"
)

type ProfessionSentiment struct {
	Profession string         `json:"profession"`
	Sentiment  SentimentLabel `json:"sentiment"`
	Count      int            `json:"count"`
}

type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

type FeedbackSample struct {
	Text      string         `json:"text"`
	Sentiment SentimentLabel `json:"sentiment"`
}

type SentimentReport struct {
	ByProfession []ProfessionSentiment  `json:"by_profession"`
	Global       map[SentimentLabel]int `json:"global"`
	TopTerms     []TermCount            `json:"top_terms"`
	Samples      []FeedbackSample       `json:"samples"`
}

type DistrictStats struct {
	District        string       `json:"district"`
	Candidates      int          `json:"candidates"`
	EligiblePercent float64      `json:"eligible_percent"`
	Men             int          `json:"men"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
}

type MapReport struct {
	Districts        []DistrictStats `json:"districts"`
	PendingGeocoding []string        `json:"pending_geocoding,omitempty"`
	TotalDonors      int             `json:"total_donors"`
	EligibilityRate  float64         `json:"eligibility_rate"`
	Men              int             `json:"men"`
	Women            int             `json:"women"`
}
