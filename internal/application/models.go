package application

import (
	"io"
	"time"
)

// Record is a validated application as persisted in the submissions
// collection. Optional fields are omitted from the stored document when empty.
type Record struct {
	ID                      string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name                    string    `json:"name" bson:"name"`
	RegNo                   string    `json:"regNo" bson:"regNo"`
	BranchAndYear           string    `json:"branchAndYear" bson:"branchAndYear"`
	Email                   string    `json:"email" bson:"email"`
	Phone                   string    `json:"phone" bson:"phone"`
	PreviousExperience      string    `json:"previousExperience,omitempty" bson:"previousExperience,omitempty"`
	PrimaryPreference       string    `json:"primaryPreference" bson:"primaryPreference"`
	SecondaryPreference     string    `json:"secondaryPreference" bson:"secondaryPreference"`
	TertiaryPreference      string    `json:"tertiaryPreference,omitempty" bson:"tertiaryPreference,omitempty"`
	DepartmentJustification string    `json:"departmentJustification" bson:"departmentJustification"`
	SkillsAndExperience     string    `json:"skillsAndExperience" bson:"skillsAndExperience"`
	BonusEssay1             string    `json:"bonusEssay1,omitempty" bson:"bonusEssay1,omitempty"`
	BonusEssay2             string    `json:"bonusEssay2,omitempty" bson:"bonusEssay2,omitempty"`
	ResumeFileID            string    `json:"resumeFileId,omitempty" bson:"resumeFileId,omitempty"`
	SubmittedAt             time.Time `json:"submittedAt" bson:"submittedAt"`
}

// Field names shared by the HTTP layer, the wizard and the export layer.
const (
	FieldName                    = "name"
	FieldRegNo                   = "regNo"
	FieldBranchAndYear           = "branchAndYear"
	FieldEmail                   = "email"
	FieldPhone                   = "phone"
	FieldPreviousExperience      = "previousExperience"
	FieldPrimaryPreference       = "primaryPreference"
	FieldSecondaryPreference     = "secondaryPreference"
	FieldTertiaryPreference      = "tertiaryPreference"
	FieldDepartmentJustification = "departmentJustification"
	FieldSkillsAndExperience     = "skillsAndExperience"
	FieldBonusEssay1             = "bonusEssay1"
	FieldBonusEssay2             = "bonusEssay2"
	FieldResume                  = "resume"
	FieldResumeFileID            = "resumeFileId"
	FieldSubmittedAt             = "submittedAt"
	FieldID                      = "_id"
)

// Attachment is an uploaded résumé before it reaches the blob store.
// Content is read at most once, by the submission pipeline.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Input is the typed form of a raw submission. It is produced by Normalize
// and consumed by Validator.
type Input struct {
	Name                    string `json:"name" validate:"min=2"`
	RegNo                   string `json:"regNo" validate:"regno"`
	BranchAndYear           string `json:"branchAndYear" validate:"required"`
	Email                   string `json:"email" validate:"email"`
	Phone                   string `json:"phone" validate:"min=10,phone"`
	PreviousExperience      string `json:"previousExperience"`
	PrimaryPreference       string `json:"primaryPreference" validate:"department"`
	SecondaryPreference     string `json:"secondaryPreference" validate:"department"`
	TertiaryPreference      string `json:"tertiaryPreference" validate:"omitempty,department"`
	DepartmentJustification string `json:"departmentJustification" validate:"required"`
	SkillsAndExperience     string `json:"skillsAndExperience" validate:"required"`
	BonusEssay1             string `json:"bonusEssay1"`
	BonusEssay2             string `json:"bonusEssay2"`

	Resume *Attachment `json:"-" validate:"-"`

	// fields whose raw value was not text
	badTypes []string
}
