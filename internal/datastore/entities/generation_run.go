// Package entities defines the GORM models of the generation history database.
package entities

import "time"

// GenerationRun records one execution of the generator.
type GenerationRun struct {
	ID                uint           `gorm:"primaryKey"`
	RunID             string         `gorm:"size:36;not null;uniqueIndex"`
	OpennmsHome       string         `gorm:"size:512;not null;default:''"`
	RoutingFile       string         `gorm:"size:512;default:''"`
	StartedAt         time.Time      `gorm:"not null;index"`
	FinishedAt        time.Time      `gorm:"not null"`
	EventCount        int            `gorm:"not null;default:0"`
	NotificationCount int            `gorm:"not null;default:0"`
	UEIs              []GeneratedUEI `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM.
func (GenerationRun) TableName() string {
	return "generation_runs"
}

// Duration returns how long the run took.
func (r *GenerationRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// GeneratedUEI is an event identifier written by a run.
type GeneratedUEI struct {
	ID       uint   `gorm:"primaryKey"`
	RunID    uint   `gorm:"not null;index:idx_generated_ueis_run_uei,priority:1"`
	UEI      string `gorm:"column:uei;size:512;not null;index:idx_generated_ueis_run_uei,priority:2"`
	Severity string `gorm:"size:16;not null"`
}

// TableName returns the table name for GORM.
func (GeneratedUEI) TableName() string {
	return "generated_ueis"
}
