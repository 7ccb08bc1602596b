// Package domain defines the engagement subject areas: CRM
// interactions, cases and complaints, campaign communications, digital
// behavior, surveys and next-best-action records. Everything here
// references the policy, claims and billing families but owns nothing
// outside itself.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InteractionChannel is how a member reached the fund.
type InteractionChannel string

const (
	ChannelPhone  InteractionChannel = "Phone"
	ChannelEmail  InteractionChannel = "Email"
	ChannelChat   InteractionChannel = "Chat"
	ChannelBranch InteractionChannel = "Branch"
	ChannelWeb    InteractionChannel = "Web"
)

// InteractionDirection distinguishes inbound member contact from
// outbound fund contact.
type InteractionDirection string

const (
	DirectionInbound  InteractionDirection = "Inbound"
	DirectionOutbound InteractionDirection = "Outbound"
)

// CasePriority orders service case queues.
type CasePriority string

const (
	PriorityLow    CasePriority = "Low"
	PriorityMedium CasePriority = "Medium"
	PriorityHigh   CasePriority = "High"
	PriorityUrgent CasePriority = "Urgent"
)

// CaseStatus is the service case lifecycle.
type CaseStatus string

const (
	CaseOpen       CaseStatus = "Open"
	CaseInProgress CaseStatus = "InProgress"
	CaseResolved   CaseStatus = "Resolved"
	CaseClosed     CaseStatus = "Closed"
)

// ComplaintSeverity grades a complaint.
type ComplaintSeverity string

const (
	SeverityLow      ComplaintSeverity = "Low"
	SeverityMedium   ComplaintSeverity = "Medium"
	SeverityHigh     ComplaintSeverity = "High"
	SeverityCritical ComplaintSeverity = "Critical"
)

// ComplaintStatus is the complaint lifecycle.
type ComplaintStatus string

const (
	ComplaintReceived      ComplaintStatus = "Received"
	ComplaintAcknowledged  ComplaintStatus = "Acknowledged"
	ComplaintInvestigating ComplaintStatus = "Investigating"
	ComplaintResolved      ComplaintStatus = "Resolved"
	ComplaintEscalated     ComplaintStatus = "Escalated"
)

// CampaignStatus is the campaign lifecycle.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "Active"
	CampaignPaused    CampaignStatus = "Paused"
	CampaignCompleted CampaignStatus = "Completed"
)

// DeliveryStatus tracks an outbound communication.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliverySent      DeliveryStatus = "Sent"
	DeliveryDelivered DeliveryStatus = "Delivered"
	DeliveryBounced   DeliveryStatus = "Bounced"
	DeliveryFailed    DeliveryStatus = "Failed"
)

// SurveyProcessing tracks enrichment of a pending survey.
type SurveyProcessing string

const (
	ProcessingPending   SurveyProcessing = "Pending"
	ProcessingCompleted SurveyProcessing = "Completed"
	ProcessingFailed    SurveyProcessing = "Failed"
)

// NPSCategory buckets an NPS score.
type NPSCategory string

const (
	NPSDetractor NPSCategory = "Detractor"
	NPSPassive   NPSCategory = "Passive"
	NPSPromoter  NPSCategory = "Promoter"
)

// NPSCategoryFor buckets a 0..10 score.
func NPSCategoryFor(score int) NPSCategory {
	switch {
	case score <= 6:
		return NPSDetractor
	case score <= 8:
		return NPSPassive
	default:
		return NPSPromoter
	}
}

// CSATLabelFor buckets a 1..5 satisfaction score.
func CSATLabelFor(score int) string {
	switch {
	case score <= 2:
		return "Dissatisfied"
	case score == 3:
		return "Neutral"
	default:
		return "Satisfied"
	}
}

// RecommendationStatus is the next-best-action recommendation
// lifecycle.
type RecommendationStatus string

const (
	RecommendationPending    RecommendationStatus = "pending"
	RecommendationScheduled  RecommendationStatus = "scheduled"
	RecommendationExecuted   RecommendationStatus = "executed"
	RecommendationExpired    RecommendationStatus = "expired"
	RecommendationSuppressed RecommendationStatus = "suppressed"
)

// NBAChannel is where a recommended action is executed.
type NBAChannel string

const (
	NBAEmail  NBAChannel = "Email"
	NBASMS    NBAChannel = "SMS"
	NBAPhone  NBAChannel = "Phone"
	NBAInApp  NBAChannel = "InApp"
	NBALetter NBAChannel = "Letter"
	NBAWeb    NBAChannel = "Web"
)

// Interaction is one contact between a member and the fund.
type Interaction struct {
	ID                     uuid.UUID            `gorm:"primaryKey;type:uuid;column:interaction_id"`
	InteractionReference   string               `gorm:"type:varchar(30);uniqueIndex;not null"`
	PolicyID               uuid.UUID            `gorm:"type:uuid;not null;index"`
	MemberID               uuid.UUID            `gorm:"type:uuid;not null;index"`
	InteractionTypeID      int                  `gorm:"not null"`
	Channel                InteractionChannel   `gorm:"type:varchar(20);not null"`
	Direction              InteractionDirection `gorm:"type:varchar(10);not null"`
	StartDatetime          time.Time            `gorm:"not null"`
	EndDatetime            *time.Time
	DurationSeconds        *int
	Subject                *string `gorm:"type:varchar(200)"`
	Summary                *string `gorm:"type:varchar(2000)"`
	OutcomeID              *int
	HandledBy              *string `gorm:"type:varchar(50)"`
	QueueName              *string `gorm:"type:varchar(50)"`
	WaitTimeSeconds        *int
	FirstContactResolution bool `gorm:"not null;default:false"`
	SatisfactionScore      *int
	TriggerEventType       *TriggerEventType `gorm:"type:varchar(30)"`
	TriggerEventID         *uuid.UUID        `gorm:"type:uuid"`
	CaseID                 *uuid.UUID        `gorm:"type:uuid"`
	ClaimID                *uuid.UUID        `gorm:"type:uuid"`
	InvoiceID              *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt              time.Time         `gorm:"not null"`
	CreatedBy              string            `gorm:"type:varchar(50);not null"`
}

func (Interaction) TableName() string { return "interactions" }

// ServiceCase is a tracked unit of work raised for a member.
type ServiceCase struct {
	ID                  uuid.UUID    `gorm:"primaryKey;type:uuid;column:case_id"`
	CaseNumber          string       `gorm:"type:varchar(30);uniqueIndex;not null"`
	CaseTypeID          int          `gorm:"not null"`
	PolicyID            uuid.UUID    `gorm:"type:uuid;not null;index"`
	MemberID            uuid.UUID    `gorm:"type:uuid;not null;index"`
	Subject             string       `gorm:"type:varchar(200);not null"`
	Description         *string      `gorm:"type:varchar(4000)"`
	Priority            CasePriority `gorm:"type:varchar(10);not null"`
	Status              CaseStatus   `gorm:"type:varchar(20);not null;default:'Open'"`
	AssignedTo          *string      `gorm:"type:varchar(50)"`
	AssignedTeam        *string      `gorm:"type:varchar(50)"`
	SourceInteractionID *uuid.UUID   `gorm:"type:uuid"`
	RelatedClaimID      *uuid.UUID   `gorm:"type:uuid"`
	RelatedInvoiceID    *uuid.UUID   `gorm:"type:uuid"`
	DueDate             *time.Time   `gorm:"type:date"`
	ResolutionDate      *time.Time
	ResolutionSummary   *string   `gorm:"type:varchar(1000)"`
	SLABreached         bool      `gorm:"not null;default:false;column:sla_breached"`
	CreatedAt           time.Time `gorm:"not null"`
	CreatedBy           string    `gorm:"type:varchar(50);not null"`
	ModifiedAt          *time.Time
	ModifiedBy          *string `gorm:"type:varchar(50)"`
}

func (ServiceCase) TableName() string { return "service_cases" }

// Complaint is a formal grievance, optionally escalated to the
// ombudsman.
type Complaint struct {
	ID                  uuid.UUID         `gorm:"primaryKey;type:uuid;column:complaint_id"`
	ComplaintNumber     string            `gorm:"type:varchar(30);uniqueIndex;not null"`
	CaseID              *uuid.UUID        `gorm:"type:uuid"`
	PolicyID            uuid.UUID         `gorm:"type:uuid;not null;index"`
	MemberID            uuid.UUID         `gorm:"type:uuid;not null;index"`
	ComplaintCategoryID int               `gorm:"not null"`
	Subject             string            `gorm:"type:varchar(200);not null"`
	Description         *string           `gorm:"type:varchar(4000)"`
	Severity            ComplaintSeverity `gorm:"type:varchar(10);not null"`
	Status              ComplaintStatus   `gorm:"type:varchar(20);not null;default:'Received'"`
	Source              string            `gorm:"type:varchar(20);not null"`
	ReceivedDate        time.Time         `gorm:"type:date;not null"`
	AcknowledgedDate    *time.Time        `gorm:"type:date"`
	DueDate             time.Time         `gorm:"type:date;not null"`
	AssignedTo          *string           `gorm:"type:varchar(50)"`
	ResolutionDate      *time.Time        `gorm:"type:date"`
	ResolutionSummary   *string           `gorm:"type:varchar(2000)"`
	ResolutionOutcome   *string           `gorm:"type:varchar(30)"`
	CompensationAmount  *decimal.Decimal  `gorm:"type:numeric(10,2)"`
	PHIOEscalated       bool              `gorm:"not null;default:false;column:phio_escalated"`
	PHIOReference       *string           `gorm:"type:varchar(30);column:phio_reference"`
	PHIOEscalationDate  *time.Time        `gorm:"type:date;column:phio_escalation_date"`
	CreatedAt           time.Time         `gorm:"not null"`
	CreatedBy           string            `gorm:"type:varchar(50);not null"`
	ModifiedAt          *time.Time
	ModifiedBy          *string `gorm:"type:varchar(50)"`
}

func (Complaint) TableName() string { return "complaints" }

// CommunicationPreference is a member's opt-in state for one contact
// purpose and channel.
type CommunicationPreference struct {
	ID             uuid.UUID  `gorm:"primaryKey;type:uuid;column:preference_id"`
	MemberID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_pref_member_type_channel,unique,priority:1"`
	PolicyID       uuid.UUID  `gorm:"type:uuid;not null"`
	PreferenceType string     `gorm:"type:varchar(30);not null;index:idx_pref_member_type_channel,unique,priority:2"`
	Channel        string     `gorm:"type:varchar(20);not null;index:idx_pref_member_type_channel,unique,priority:3"`
	IsOptedIn      bool       `gorm:"not null;default:true"`
	OptInDate      *time.Time `gorm:"type:date"`
	OptOutDate     *time.Time `gorm:"type:date"`
	PreferredTime  *string    `gorm:"type:varchar(20)"`
	CreatedAt      time.Time  `gorm:"not null"`
	CreatedBy      string     `gorm:"type:varchar(50);not null"`
	ModifiedAt     *time.Time
	ModifiedBy     *string `gorm:"type:varchar(50)"`
}

func (CommunicationPreference) TableName() string { return "communication_preferences" }

// Campaign is a marketing or retention program.
type Campaign struct {
	ID                 uuid.UUID        `gorm:"primaryKey;type:uuid;column:campaign_id"`
	CampaignCode       string           `gorm:"type:varchar(30);uniqueIndex;not null"`
	CampaignName       string           `gorm:"type:varchar(100);not null"`
	CampaignType       string           `gorm:"type:varchar(30);not null"`
	Description        *string          `gorm:"type:varchar(1000)"`
	StartDate          time.Time        `gorm:"type:date;not null"`
	EndDate            *time.Time       `gorm:"type:date"`
	Status             CampaignStatus   `gorm:"type:varchar(20);not null;default:'Active'"`
	TargetAudience     *string          `gorm:"type:varchar(500)"`
	TargetSegment      *string          `gorm:"type:varchar(100)"`
	Budget             *decimal.Decimal `gorm:"type:numeric(12,2)"`
	ActualSpend        *decimal.Decimal `gorm:"type:numeric(12,2)"`
	MembersTargeted    int              `gorm:"not null;default:0"`
	CommunicationsSent int              `gorm:"not null;default:0"`
	ResponsesReceived  int              `gorm:"not null;default:0"`
	Conversions        int              `gorm:"not null;default:0"`
	Owner              *string          `gorm:"type:varchar(50)"`
	CreatedAt          time.Time        `gorm:"not null"`
	CreatedBy          string           `gorm:"type:varchar(50);not null"`
	ModifiedAt         *time.Time
	ModifiedBy         *string `gorm:"type:varchar(50)"`
}

func (Campaign) TableName() string { return "campaigns" }

// Communication is one outbound message to a member.
type Communication struct {
	ID                uuid.UUID  `gorm:"primaryKey;type:uuid;column:communication_id"`
	CommunicationRef  string     `gorm:"type:varchar(30);uniqueIndex;not null;column:communication_reference"`
	PolicyID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	MemberID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	CampaignID        *uuid.UUID `gorm:"type:uuid;index"`
	CommunicationType string     `gorm:"type:varchar(30);not null"`
	TemplateCode      *string    `gorm:"type:varchar(50)"`
	Subject           *string    `gorm:"type:varchar(200)"`
	RecipientEmail    *string    `gorm:"type:varchar(200)"`
	RecipientPhone    *string    `gorm:"type:varchar(20)"`
	ScheduledDate     *time.Time
	SentDate          *time.Time
	DeliveryStatus    DeliveryStatus `gorm:"type:varchar(20);not null;default:'Pending'"`
	DeliveryStatusAt  *time.Time     `gorm:"column:delivery_status_date"`
	OpenedDate        *time.Time
	ClickedDate       *time.Time
	TriggerEventType  *TriggerEventType `gorm:"type:varchar(30)"`
	TriggerEventID    *uuid.UUID        `gorm:"type:uuid"`
	ClaimID           *uuid.UUID        `gorm:"type:uuid"`
	InvoiceID         *uuid.UUID        `gorm:"type:uuid"`
	InteractionID     *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt         time.Time         `gorm:"not null"`
	CreatedBy         string            `gorm:"type:varchar(50);not null"`
}

func (Communication) TableName() string { return "communications" }

// CampaignResponse is a member's reaction to a campaign touch.
type CampaignResponse struct {
	ID              uuid.UUID        `gorm:"primaryKey;type:uuid;column:response_id"`
	CampaignID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	MemberID        uuid.UUID        `gorm:"type:uuid;not null"`
	PolicyID        uuid.UUID        `gorm:"type:uuid;not null"`
	CommunicationID *uuid.UUID       `gorm:"type:uuid"`
	ResponseType    string           `gorm:"type:varchar(20);not null"`
	ResponseDate    time.Time        `gorm:"not null"`
	ConversionType  *string          `gorm:"type:varchar(30)"`
	ConversionValue *decimal.Decimal `gorm:"type:numeric(10,2)"`
	ResponseChannel *string          `gorm:"type:varchar(20)"`
	CreatedAt       time.Time        `gorm:"not null"`
	CreatedBy       string           `gorm:"type:varchar(50);not null"`
}

func (CampaignResponse) TableName() string { return "campaign_responses" }

// WebSession is one portal or app visit.
type WebSession struct {
	ID                uuid.UUID  `gorm:"primaryKey;type:uuid;column:session_id"`
	MemberID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	PolicyID          *uuid.UUID `gorm:"type:uuid"`
	SessionStart      time.Time  `gorm:"not null"`
	SessionEnd        *time.Time
	DurationSeconds   *int
	PageCount         int               `gorm:"not null;default:0"`
	EventCount        int               `gorm:"not null;default:0"`
	DeviceType        *string           `gorm:"type:varchar(20)"`
	Browser           *string           `gorm:"type:varchar(50)"`
	OperatingSystem   *string           `gorm:"type:varchar(50)"`
	EntryPage         *string           `gorm:"type:varchar(200)"`
	ExitPage          *string           `gorm:"type:varchar(200)"`
	Referrer          *string           `gorm:"type:varchar(200)"`
	IsAuthenticated   bool              `gorm:"not null;default:true"`
	SessionType       *string           `gorm:"type:varchar(30)"`
	ViewedCancelPage  bool              `gorm:"not null;default:false"`
	ViewedUpgradePage bool              `gorm:"not null;default:false"`
	ViewedClaimsPage  bool              `gorm:"not null;default:false"`
	ViewedBillingPage bool              `gorm:"not null;default:false"`
	TriggerEventType  *TriggerEventType `gorm:"type:varchar(30)"`
	TriggerEventID    *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt         time.Time         `gorm:"not null"`
	CreatedBy         string            `gorm:"type:varchar(50);not null"`
}

func (WebSession) TableName() string { return "web_sessions" }

// DigitalEvent is one tracked action inside a web session.
type DigitalEvent struct {
	ID             uuid.UUID  `gorm:"primaryKey;type:uuid;column:digital_event_id"`
	SessionID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	MemberID       uuid.UUID  `gorm:"type:uuid;not null"`
	EventTimestamp time.Time  `gorm:"not null"`
	EventType      string     `gorm:"type:varchar(30);not null"`
	PagePath       *string    `gorm:"type:varchar(200)"`
	PageCategory   *string    `gorm:"type:varchar(30)"`
	ElementID      *string    `gorm:"type:varchar(100)"`
	SearchTerm     *string    `gorm:"type:varchar(200)"`
	RelatedClaimID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time  `gorm:"not null"`
	CreatedBy      string     `gorm:"type:varchar(50);not null"`
}

func (DigitalEvent) TableName() string { return "digital_events" }

// NPSSurveyPending is an NPS invitation queued for enrichment. The
// row is append-only except for its processing bookkeeping.
type NPSSurveyPending struct {
	ID                  uuid.UUID        `gorm:"primaryKey;type:uuid;column:pending_id"`
	SurveyReference     string           `gorm:"type:varchar(30);uniqueIndex;not null"`
	MemberID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	PolicyID            uuid.UUID        `gorm:"type:uuid;not null"`
	SurveyType          string           `gorm:"type:varchar(20);not null"`
	TriggerEvent        *string          `gorm:"type:varchar(50)"`
	TriggerEntityID     *uuid.UUID       `gorm:"type:uuid"`
	ClaimID             *uuid.UUID       `gorm:"type:uuid"`
	InteractionID       *uuid.UUID       `gorm:"type:uuid"`
	SentDatetime        time.Time        `gorm:"not null"`
	WillRespond         bool             `gorm:"not null"`
	ResponseProbability *decimal.Decimal `gorm:"type:numeric(5,4)"`
	CompletedDatetime   *time.Time
	LLMContext          datatypes.JSON   `gorm:"column:llm_context"`
	ProcessingStatus    SurveyProcessing `gorm:"type:varchar(20);not null;default:'Pending'"`
	ProcessedAt         *time.Time
	ErrorMessage        *string    `gorm:"type:text"`
	RetryCount          int        `gorm:"not null;default:0"`
	FinalSurveyID       *uuid.UUID `gorm:"type:uuid"`
	CreatedAt           time.Time  `gorm:"not null"`
	CreatedBy           string     `gorm:"type:varchar(50);not null"`
}

func (NPSSurveyPending) TableName() string { return "nps_surveys_pending" }

// NPSSurvey is a completed NPS response.
type NPSSurvey struct {
	ID                 uuid.UUID  `gorm:"primaryKey;type:uuid;column:survey_id"`
	SurveyReference    string     `gorm:"type:varchar(30);uniqueIndex;not null"`
	MemberID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	PolicyID           uuid.UUID  `gorm:"type:uuid;not null"`
	SurveyType         string     `gorm:"type:varchar(20);not null"`
	TriggerEvent       *string    `gorm:"type:varchar(50)"`
	TriggerEntityID    *uuid.UUID `gorm:"type:uuid"`
	ClaimID            *uuid.UUID `gorm:"type:uuid"`
	InteractionID      *uuid.UUID `gorm:"type:uuid"`
	SentDate           time.Time  `gorm:"not null"`
	CompletedDate      *time.Time
	NPSScore           *int             `gorm:"column:nps_score"`
	NPSCategory        *NPSCategory     `gorm:"type:varchar(10);column:nps_category"`
	FeedbackText       *string          `gorm:"type:varchar(2000)"`
	FeedbackThemes     *string          `gorm:"type:varchar(500)"`
	SentimentScore     *decimal.Decimal `gorm:"type:numeric(4,3)"`
	SentimentLabel     *string          `gorm:"type:varchar(20)"`
	SurveyChannel      *string          `gorm:"type:varchar(20)"`
	ResponseTimeMinute *int             `gorm:"column:response_time_minutes"`
	FollowUpConsent    *bool
	PendingID          *uuid.UUID `gorm:"type:uuid"`
	CreatedAt          time.Time  `gorm:"not null"`
	CreatedBy          string     `gorm:"type:varchar(50);not null"`
}

func (NPSSurvey) TableName() string { return "nps_surveys" }

// CSATSurveyPending is a CSAT invitation queued for enrichment.
type CSATSurveyPending struct {
	ID                  uuid.UUID        `gorm:"primaryKey;type:uuid;column:pending_id"`
	SurveyReference     string           `gorm:"type:varchar(30);uniqueIndex;not null"`
	MemberID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	PolicyID            uuid.UUID        `gorm:"type:uuid;not null"`
	SurveyType          string           `gorm:"type:varchar(20);not null"`
	InteractionID       *uuid.UUID       `gorm:"type:uuid"`
	CaseID              *uuid.UUID       `gorm:"type:uuid"`
	SentDatetime        time.Time        `gorm:"not null"`
	WillRespond         bool             `gorm:"not null"`
	ResponseProbability *decimal.Decimal `gorm:"type:numeric(5,4)"`
	CompletedDatetime   *time.Time
	LLMContext          datatypes.JSON   `gorm:"column:llm_context"`
	ProcessingStatus    SurveyProcessing `gorm:"type:varchar(20);not null;default:'Pending'"`
	ProcessedAt         *time.Time
	ErrorMessage        *string    `gorm:"type:text"`
	RetryCount          int        `gorm:"not null;default:0"`
	FinalSurveyID       *uuid.UUID `gorm:"type:uuid"`
	CreatedAt           time.Time  `gorm:"not null"`
	CreatedBy           string     `gorm:"type:varchar(50);not null"`
}

func (CSATSurveyPending) TableName() string { return "csat_surveys_pending" }

// CSATSurvey is a completed satisfaction response for one interaction
// or case.
type CSATSurvey struct {
	ID                 uuid.UUID  `gorm:"primaryKey;type:uuid;column:survey_id"`
	SurveyReference    string     `gorm:"type:varchar(30);uniqueIndex;not null"`
	MemberID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	PolicyID           uuid.UUID  `gorm:"type:uuid;not null"`
	SurveyType         string     `gorm:"type:varchar(20);not null"`
	InteractionID      *uuid.UUID `gorm:"type:uuid"`
	CaseID             *uuid.UUID `gorm:"type:uuid"`
	SentDate           time.Time  `gorm:"not null"`
	CompletedDate      *time.Time
	CSATScore          *int    `gorm:"column:csat_score"`
	CSATLabel          *string `gorm:"type:varchar(20);column:csat_label"`
	EffortScore        *int
	RecommendAgent     *bool
	FeedbackText       *string    `gorm:"type:varchar(1000)"`
	SentimentLabel     *string    `gorm:"type:varchar(20)"`
	SurveyChannel      *string    `gorm:"type:varchar(20)"`
	ResponseTimeMinute *int       `gorm:"column:response_time_minutes"`
	PendingID          *uuid.UUID `gorm:"type:uuid"`
	CreatedAt          time.Time  `gorm:"not null"`
	CreatedBy          string     `gorm:"type:varchar(50);not null"`
}

func (CSATSurvey) TableName() string { return "csat_surveys" }

// NBAActionCatalog is one action the next-best-action engine may
// recommend.
type NBAActionCatalog struct {
	ID                    uuid.UUID  `gorm:"primaryKey;type:uuid;column:action_id"`
	ActionCode            string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	ActionName            string     `gorm:"type:varchar(200);not null"`
	BusinessIssue         string     `gorm:"type:varchar(20);not null"`
	ActionCategory        string     `gorm:"type:varchar(20);not null"`
	Channel               NBAChannel `gorm:"type:varchar(10);not null"`
	Description           *string    `gorm:"type:text"`
	EligibilityRules      datatypes.JSON
	SuitabilityRules      datatypes.JSON
	BaseBusinessValue     *decimal.Decimal `gorm:"type:numeric(10,2)"`
	ProbabilityMultiplier decimal.Decimal  `gorm:"type:numeric(5,2);not null;default:1"`
	CooldownDays          int              `gorm:"not null;default:30"`
	MaxAttempts           int              `gorm:"not null;default:3"`
	IsActive              bool             `gorm:"not null;default:true"`
	CreatedAt             time.Time        `gorm:"not null"`
	UpdatedAt             time.Time        `gorm:"not null"`
	CreatedBy             string           `gorm:"type:varchar(50);not null"`
}

func (NBAActionCatalog) TableName() string { return "nba_action_catalog" }

// NBARecommendation is one scored action proposed for a member in one
// batch.
type NBARecommendation struct {
	ID                 uuid.UUID        `gorm:"primaryKey;type:uuid;column:recommendation_id"`
	BatchID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	BatchDate          time.Time        `gorm:"type:date;not null"`
	MemberID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	PolicyID           *uuid.UUID       `gorm:"type:uuid"`
	ActionID           uuid.UUID        `gorm:"type:uuid;not null"`
	PropensityScore    *decimal.Decimal `gorm:"type:numeric(5,4)"`
	UrgencyScore       *decimal.Decimal `gorm:"type:numeric(5,4)"`
	BusinessValueScore *decimal.Decimal `gorm:"type:numeric(10,2)"`
	PriorityRank       *int
	FinalScore         *decimal.Decimal `gorm:"type:numeric(10,4)"`
	TriggerReason      *string          `gorm:"type:varchar(100)"`
	TriggerSignals     datatypes.JSON
	ModelVersion       *string              `gorm:"type:varchar(50)"`
	ValidFrom          time.Time            `gorm:"type:date;not null"`
	ValidUntil         time.Time            `gorm:"type:date;not null"`
	Status             RecommendationStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	SuppressionReason  *string              `gorm:"type:varchar(100)"`
	CreatedAt          time.Time            `gorm:"not null"`
	ModifiedAt         *time.Time
}

func (NBARecommendation) TableName() string { return "nba_recommendations" }

// NBAExecution records an action actually taken against a member.
type NBAExecution struct {
	ID                 uuid.UUID  `gorm:"primaryKey;type:uuid;column:execution_id"`
	RecommendationID   *uuid.UUID `gorm:"type:uuid;index"`
	ActionID           uuid.UUID  `gorm:"type:uuid;not null"`
	MemberID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	PolicyID           *uuid.UUID `gorm:"type:uuid"`
	ExecutedAt         time.Time  `gorm:"not null"`
	ExecutionChannel   NBAChannel `gorm:"type:varchar(10);not null"`
	ExecutionMethod    *string    `gorm:"type:varchar(20)"`
	CommunicationID    *uuid.UUID `gorm:"type:uuid"`
	InteractionID      *uuid.UUID `gorm:"type:uuid"`
	CampaignResponseID *uuid.UUID `gorm:"type:uuid"`
	ImmediateResponse  *string    `gorm:"type:varchar(20)"`
	ResponseAt         *time.Time
	CreatedAt          time.Time `gorm:"not null"`
}

func (NBAExecution) TableName() string { return "nba_executions" }
