package store

import (
	"strings"
	"time"

	"gorm.io/gorm/schema"
)

type JobStatus string

const (
	JobProcessing JobStatus = "PROCESSING"
	JobSucceeded  JobStatus = "SUCCESS"
	JobFailed     JobStatus = "FAILED"
)

// Job is one daily run.
type Job struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CreationDate time.Time `gorm:"not null" json:"creation_date"`

	Status JobStatus `gorm:"type:varchar(32);index;not null" json:"status"`

	// Filled once the completion notification is sent
	NotifyID         *string `gorm:"type:varchar(64)" json:"notify_id"`
	OutputAttachment *string `gorm:"type:text" json:"output_attachment"`

	// Filled when failed
	ErrorMessage *string `gorm:"type:text" json:"error_message"`
}

const (
	BatchPendingGenesys = "PENDING GENESYS"
)

// Batch is one bulk-download request submitted to Genesys. Later stages
// move it forward through the gemini_* columns and status.
type Batch struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	ProcessDate *time.Time `json:"process_date"`

	AudiosCount  int     `gorm:"not null" json:"audios_count"`
	Status       string  `gorm:"type:varchar(64);not null" json:"status"`
	ErrorMessage *string `gorm:"type:text" json:"error_message"`

	GenesysBatchID            string  `gorm:"column:genesys_batch_id;type:varchar(64);uniqueIndex;not null" json:"genesys_batch_id"`
	GeminiBatchID             *string `gorm:"column:gemini_batch_id;type:varchar(128)" json:"gemini_batch_id"`
	GeminiCategoryBatchID     *string `gorm:"column:gemini_category_batch_id;type:varchar(128)" json:"gemini_category_batch_id"`
	GeminiTypificationBatchID *string `gorm:"column:gemini_typification_batch_id;type:varchar(128)" json:"gemini_typification_batch_id"`

	JobID uint64 `gorm:"index;not null" json:"job_id"`
	Job   *Job   `gorm:"foreignKey:JobID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

type AudioStatus string

const (
	AudioPending     AudioStatus = "PENDING"
	AudioNoRecording AudioStatus = "NO RECORDING"
)

// Audio is one conversation recording selected for download.
// id_conversation is not unique: the same conversation may appear in
// several runs unless the caller deduplicates.
type Audio struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	IDConversation string      `gorm:"column:id_conversation;type:varchar(64);index;not null" json:"id_conversation"`
	Status         AudioStatus `gorm:"type:varchar(32);not null" json:"status"`
	CreationDate   time.Time   `gorm:"not null" json:"creation_date"`
	CallDate       time.Time   `gorm:"not null" json:"call_date"`
	CallDuration   int64       `gorm:"not null" json:"call_duration"`

	// Analysis fields, written by downstream stages
	Reason               *string `gorm:"type:text" json:"reason"`
	ReasonShort          *string `gorm:"type:text" json:"reason_short"`
	Summary              *string `gorm:"type:text" json:"summary"`
	InitialFeeling       *string `gorm:"type:varchar(64)" json:"initial_feeling"`
	FinalFeeling         *string `gorm:"type:varchar(64)" json:"final_feeling"`
	ProductType          *string `gorm:"type:varchar(128)" json:"product_type"`
	CategoryTypification *string `gorm:"type:varchar(128)" json:"category_typification"`
	Typification         *string `gorm:"type:varchar(128)" json:"typification"`
	TypificationReason   *string `gorm:"type:text" json:"typification_reason"`

	// Genesys batch id of the owning batch
	BatchID *string `gorm:"column:batch_id;type:varchar(64);index" json:"batch_id"`
	Batch   *Batch  `gorm:"foreignKey:BatchID;references:GenesysBatchID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// Models lists every table owned by this module, in creation order.
func Models() []any {
	return []any{&Job{}, &Batch{}, &Audio{}}
}

// Naming maps the models to singular tables inside dbSchema. An empty
// schema leaves tables unqualified (sqlite).
func Naming(dbSchema string) schema.NamingStrategy {
	ns := schema.NamingStrategy{SingularTable: true}
	if s := strings.TrimSpace(dbSchema); s != "" {
		ns.TablePrefix = s + "."
	}
	return ns
}
