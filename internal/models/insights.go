package models

import "time"

// InsightCategory groups parenting insights by theme
type InsightCategory string

const (
	InsightCategoryBonding       InsightCategory = "bonding"
	InsightCategoryCommunication InsightCategory = "communication"
	InsightCategoryDevelopment   InsightCategory = "development"
	InsightCategoryBehavior      InsightCategory = "behavior"
	InsightCategoryEmotions      InsightCategory = "emotions"
)

// Valid reports whether c is a known insight category
func (c InsightCategory) Valid() bool {
	switch c {
	case InsightCategoryBonding, InsightCategoryCommunication, InsightCategoryDevelopment,
		InsightCategoryBehavior, InsightCategoryEmotions:
		return true
	}
	return false
}

// AgeRange is the age band an insight is written for
type AgeRange string

const (
	AgeRange4To6  AgeRange = "4-6"
	AgeRange7To8  AgeRange = "7-8"
	AgeRange9To10 AgeRange = "9-10"
	AgeRangeAll   AgeRange = "all"
)

// Valid reports whether r is a known age band
func (r AgeRange) Valid() bool {
	switch r {
	case AgeRange4To6, AgeRange7To8, AgeRange9To10, AgeRangeAll:
		return true
	}
	return false
}

// Insight is a short bookmarkable parenting article
type Insight struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Category  InsightCategory `json:"category"`
	AgeRange  AgeRange        `json:"age_range"`
	CreatedAt time.Time       `json:"created_at"`
}

// InsightBookmark links a user to a saved insight
type InsightBookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	InsightID string    `json:"insight_id"`
	CreatedAt time.Time `json:"created_at"`
	// Expanded relation (populated on fetch)
	Insight *Insight `json:"insight,omitempty"`
}

// InsightQuery selects which insights to list
type InsightQuery struct {
	Category InsightCategory `form:"category" binding:"omitempty,insight_category"`
	AgeRange AgeRange        `form:"age_range" binding:"omitempty,age_range"`
	Search   string          `form:"q" binding:"max=100"`
	Relevant bool            `form:"relevant"`
}
