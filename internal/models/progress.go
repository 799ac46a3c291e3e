package models

import "time"

// Progress is keyed by user id; every write deep-merges into the existing row.
type Progress struct {
	UserID            string                  `bson:"_id,omitempty" json:"userId"`
	TreatmentProgress *TreatmentProgress      `bson:"treatmentProgress,omitempty" json:"treatmentProgress,omitempty"`
	HealthMetrics     map[string]HealthMetric `bson:"healthMetrics,omitempty" json:"healthMetrics,omitempty"`
	WeeklyData        []map[string]any        `bson:"weeklyData,omitempty" json:"weeklyData,omitempty"`
	UpdatedAt         time.Time               `bson:"updatedAt" json:"updatedAt"`
}

type TreatmentProgress struct {
	CurrentDay int    `bson:"currentDay" json:"currentDay"`
	TotalDays  int    `bson:"totalDays" json:"totalDays"`
	Percentage int    `bson:"percentage" json:"percentage"`
	Phase      string `bson:"phase,omitempty" json:"phase,omitempty"`
	NextPhase  string `bson:"nextPhase,omitempty" json:"nextPhase,omitempty"`
	DaysToNext int    `bson:"daysToNext,omitempty" json:"daysToNext,omitempty"`
}

// HealthMetric tracks one measure, e.g. energyLevel or sleepQuality.
type HealthMetric struct {
	Current  float64 `bson:"current" json:"current"`
	Previous float64 `bson:"previous" json:"previous"`
	Target   float64 `bson:"target" json:"target"`
	Trend    string  `bson:"trend,omitempty" json:"trend,omitempty"` // up, down or stable
}
